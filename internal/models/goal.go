package models

import "time"

// GoalCategory determines which financial data a goal's progress is
// computed from.
type GoalCategory string

const (
	GoalCategoryAssetGrowth      GoalCategory = "asset_growth"
	GoalCategorySavings          GoalCategory = "savings"
	GoalCategoryDebtReduction    GoalCategory = "debt_reduction"
	GoalCategoryExpenseReduction GoalCategory = "expense_reduction"
)

// GoalPriority represents the priority of a goal
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// GoalStatus is the persisted lifecycle state of a goal. Distinct from the
// derived pace status in GoalProgress.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// FinancialGoal represents a savings/debt/expense target for an
// organization. Amounts are in minor units. CurrentAmount is recomputed
// from organization financial data, never edited directly; it is signed
// because debt and expense reduction goals track toward zero from below.
type FinancialGoal struct {
	Base
	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string       `gorm:"not null" json:"name"`
	Category       GoalCategory `gorm:"not null" json:"category"`
	TargetAmount   int64        `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount  int64        `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate     time.Time    `gorm:"not null" json:"target_date"`
	Priority       GoalPriority `gorm:"not null;default:'medium'" json:"priority"`
	Description    string       `json:"description"`
	Status         GoalStatus   `gorm:"not null;default:'active'" json:"status"`
}
