package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

func validGoalCategory(c models.GoalCategory) bool {
	switch c {
	case models.GoalCategoryAssetGrowth, models.GoalCategorySavings,
		models.GoalCategoryDebtReduction, models.GoalCategoryExpenseReduction:
		return true
	}
	return false
}

// goalService implements the goal progress engine.
type goalService struct {
	db          *gorm.DB
	assets      AssetServicer
	liabilities LiabilityServicer
	txns        TransactionServicer
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB, assets AssetServicer, liabilities LiabilityServicer, txns TransactionServicer) GoalServicer {
	return &goalService{db: db, assets: assets, liabilities: liabilities, txns: txns}
}

// CalculateCurrentAmount derives a goal's accumulated amount from the
// organization's current financial state. Each goal category reads exactly
// one data source.
func (s *goalService) CalculateCurrentAmount(orgID string, category models.GoalCategory) (int64, error) {
	switch category {
	case models.GoalCategoryAssetGrowth:
		return s.assets.SumCurrentValues(orgID)

	case models.GoalCategorySavings:
		// Net of all signed transaction amounts, floored at zero.
		net, err := s.txns.NetTotal(orgID)
		if err != nil {
			return 0, err
		}
		if net < 0 {
			net = 0
		}
		return net, nil

	case models.GoalCategoryDebtReduction:
		// Expressed negative so progress toward zero debt moves toward the target.
		total, err := s.liabilities.SumCurrentAmounts(orgID)
		if err != nil {
			return 0, err
		}
		return -total, nil

	case models.GoalCategoryExpenseReduction:
		// Negative magnitude of this calendar month's expenses: fewer
		// expenses puts the amount closer to a zero target.
		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
		total, err := s.txns.ExpenseTotalBetween(orgID, monthStart, monthEnd)
		if err != nil {
			return 0, err
		}
		if total > 0 {
			total = -total
		}
		return total, nil

	default:
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal category")
	}
}

// CreateGoal validates and persists a new goal with its initial current
// amount computed from existing data.
func (s *goalService) CreateGoal(orgID string, input CreateGoalInput) (*models.FinancialGoal, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if !validGoalCategory(input.Category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal category")
	}
	if input.TargetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if input.TargetDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target date is required")
	}

	currentAmount, err := s.CalculateCurrentAmount(orgID, input.Category)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.GoalPriorityMedium
	}

	goal := &models.FinancialGoal{
		OrganizationID: orgID,
		Name:           input.Name,
		Category:       input.Category,
		TargetAmount:   input.TargetAmount,
		CurrentAmount:  currentAmount,
		TargetDate:     input.TargetDate,
		Priority:       priority,
		Description:    input.Description,
		Status:         models.GoalStatusActive,
	}
	if achievementRate(currentAmount, goal.TargetAmount) >= 100 {
		goal.Status = models.GoalStatusCompleted
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetGoalByID retrieves a goal scoped to the organization.
func (s *goalService) GetGoalByID(orgID, goalID string) (*models.FinancialGoal, error) {
	var goal models.FinancialGoal
	err := s.db.Where("id = ? AND organization_id = ?", goalID, orgID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// ListGoals returns a paginated list, optionally filtered by status.
func (s *goalService) ListGoals(orgID string, status *models.GoalStatus, page pagination.PageRequest) (*pagination.PageResponse[models.FinancialGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.FinancialGoal{}).Where("organization_id = ?", orgID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.FinancialGoal
	if err := base.Order("target_date ASC").Scopes(pagination.Paginate(page)).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateGoal applies per-field updates. Changing the goal category
// recomputes the current amount from the new data source. A goal already
// completed is never demoted back to active by recomputation; only an
// explicit status update can change it.
func (s *goalService) UpdateGoal(orgID, goalID string, input UpdateGoalInput) (*models.FinancialGoal, error) {
	goal, err := s.GetGoalByID(orgID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
		}
		updates["name"] = *input.Name
	}
	if input.TargetAmount != nil {
		if *input.TargetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *input.TargetAmount
	}
	if input.Category != nil && *input.Category != goal.Category {
		if !validGoalCategory(*input.Category) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal category")
		}
		currentAmount, err := s.CalculateCurrentAmount(orgID, *input.Category)
		if err != nil {
			return nil, err
		}
		updates["category"] = *input.Category
		updates["current_amount"] = currentAmount
	}
	if input.TargetDate != nil {
		updates["target_date"] = *input.TargetDate
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	goal, err = s.GetGoalByID(orgID, goalID)
	if err != nil {
		return nil, err
	}
	if err := s.applyCompletion(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// DeleteGoal removes a goal.
func (s *goalService) DeleteGoal(orgID, goalID string) error {
	goal, err := s.GetGoalByID(orgID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetGoalProgress returns the derived pace snapshot without persisting
// anything.
func (s *goalService) GetGoalProgress(orgID, goalID string) (*GoalProgress, error) {
	goal, err := s.GetGoalByID(orgID, goalID)
	if err != nil {
		return nil, err
	}
	return ComputeGoalProgress(goal, time.Now()), nil
}

// RecalculateProgress recomputes and persists the goal's current amount
// from organization data, applying the completion transition if the target
// has been reached.
func (s *goalService) RecalculateProgress(orgID, goalID string) (*models.FinancialGoal, error) {
	goal, err := s.GetGoalByID(orgID, goalID)
	if err != nil {
		return nil, err
	}

	currentAmount, err := s.CalculateCurrentAmount(orgID, goal.Category)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(goal).Update("current_amount", currentAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	goal.CurrentAmount = currentAmount

	if err := s.applyCompletion(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// applyCompletion promotes an active goal to completed once its
// achievement rate reaches 100%. It never transitions in any other
// direction: completed and paused goals are left alone.
func (s *goalService) applyCompletion(goal *models.FinancialGoal) error {
	if goal.Status != models.GoalStatusActive {
		return nil
	}
	if achievementRate(goal.CurrentAmount, goal.TargetAmount) < 100 {
		return nil
	}
	if err := s.db.Model(goal).Update("status", models.GoalStatusCompleted).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	goal.Status = models.GoalStatusCompleted
	return nil
}
