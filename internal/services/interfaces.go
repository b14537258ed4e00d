package services

import (
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// CreateCategoryInput holds the validated fields for creating a category.
// Level is always computed from the parent, never supplied by callers.
type CreateCategoryInput struct {
	Name         string
	Type         models.CategoryType
	ParentID     *string
	Description  string
	Icon         string
	Color        string
	IsDefault    bool
	DisplayOrder int
}

// UpdateCategoryInput holds per-field optional updates for a category.
// Nil pointers mean "leave unchanged". Re-parenting to the root is
// expressed with MoveToRoot since a nil ParentID already means unchanged.
type UpdateCategoryInput struct {
	Name         *string
	Type         *models.CategoryType
	ParentID     *string
	MoveToRoot   bool
	Description  *string
	Icon         *string
	Color        *string
	IsActive     *bool
	DisplayOrder *int
}

// reparenting reports whether the update changes the category's parent.
func (in *UpdateCategoryInput) reparenting() bool {
	return in.ParentID != nil || in.MoveToRoot
}

// DeleteCategoryResult reports how a delete was carried out.
type DeleteCategoryResult struct {
	DeletedPermanently bool `json:"deleted_permanently"`
}

// CategoryServicer defines the contract for the category hierarchy engine.
type CategoryServicer interface {
	CreateCategory(orgID string, input CreateCategoryInput) (*models.Category, error)
	GetCategoryByID(orgID, categoryID string) (*models.Category, error)
	ListCategories(orgID string, categoryType *models.CategoryType, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(orgID string, categoryType *models.CategoryType, includeInactive bool) ([]*models.CategoryNode, error)
	UpdateCategory(orgID, categoryID string, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(orgID, categoryID string, forceDelete bool) (*DeleteCategoryResult, error)
	WouldCreateCycle(orgID, categoryID, newParentID string) (bool, error)
	SeedDefaultCategories(orgID string) error
}

// CreateGoalInput holds the validated fields for creating a financial goal.
type CreateGoalInput struct {
	Name         string
	Category     models.GoalCategory
	TargetAmount int64
	TargetDate   time.Time
	Priority     models.GoalPriority
	Description  string
}

// UpdateGoalInput holds per-field optional updates for a goal.
type UpdateGoalInput struct {
	Name         *string
	Category     *models.GoalCategory
	TargetAmount *int64
	TargetDate   *time.Time
	Priority     *models.GoalPriority
	Description  *string
	Status       *models.GoalStatus
}

// PaceStatus classifies projected goal completion against the target date.
type PaceStatus string

const (
	PaceAhead   PaceStatus = "ahead"
	PaceOnTrack PaceStatus = "on-track"
	PaceBehind  PaceStatus = "behind"
)

// GoalProgress is a derived, read-only snapshot of a goal's pace. It is
// never persisted; CurrentAmount on the goal record is the only stored
// progress field.
type GoalProgress struct {
	GoalID             string     `json:"goal_id"`
	CurrentAmount      int64      `json:"current_amount"`
	TargetAmount       int64      `json:"target_amount"`
	AchievementRate    float64    `json:"achievement_rate"`
	RemainingAmount    int64      `json:"remaining_amount"`
	DaysRemaining      int        `json:"days_remaining"`
	DailyTargetToReach float64    `json:"daily_target_to_reach"`
	DailyProgress      float64    `json:"daily_progress"`
	ProjectedDays      int        `json:"projected_days"`
	IsOnTrack          bool       `json:"is_on_track"`
	DaysAheadBehind    int        `json:"days_ahead_behind"`
	Status             PaceStatus `json:"status"`
}

// GoalServicer defines the contract for the goal progress engine.
type GoalServicer interface {
	CreateGoal(orgID string, input CreateGoalInput) (*models.FinancialGoal, error)
	GetGoalByID(orgID, goalID string) (*models.FinancialGoal, error)
	ListGoals(orgID string, status *models.GoalStatus, page pagination.PageRequest) (*pagination.PageResponse[models.FinancialGoal], error)
	UpdateGoal(orgID, goalID string, input UpdateGoalInput) (*models.FinancialGoal, error)
	DeleteGoal(orgID, goalID string) error
	GetGoalProgress(orgID, goalID string) (*GoalProgress, error)
	RecalculateProgress(orgID, goalID string) (*models.FinancialGoal, error)
	CalculateCurrentAmount(orgID string, category models.GoalCategory) (int64, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	MinAmount  *int64
	MaxAmount  *int64
}

// TransactionServicer defines the contract for transaction bookkeeping and
// the aggregate reads the goal engine consumes.
type TransactionServicer interface {
	CreateTransaction(orgID, createdByID string, categoryID *string, transactionType models.TransactionType, amount int64, description string, date time.Time) (*models.Transaction, error)
	GetTransactionByID(orgID, transactionID string) (*models.Transaction, error)
	ListTransactions(orgID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	DeleteTransaction(orgID, transactionID string) error
	NetTotal(orgID string) (int64, error)
	ExpenseTotalBetween(orgID string, from, to time.Time) (int64, error)
}

// AssetServicer defines the contract for asset tracking.
type AssetServicer interface {
	CreateAsset(orgID, name string, assetType models.AssetType, currentValue int64, currency, description string) (*models.Asset, error)
	GetAssetByID(orgID, assetID string) (*models.Asset, error)
	ListAssets(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	UpdateAssetValue(orgID, assetID string, currentValue int64) (*models.Asset, error)
	DeleteAsset(orgID, assetID string) error
	SumCurrentValues(orgID string) (int64, error)
}

// LiabilityServicer defines the contract for liability tracking.
type LiabilityServicer interface {
	CreateLiability(orgID, name string, liabilityType models.LiabilityType, currentAmount int64, interestRate float64, dueDate *time.Time, description string) (*models.Liability, error)
	GetLiabilityByID(orgID, liabilityID string) (*models.Liability, error)
	ListLiabilities(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Liability], error)
	UpdateLiabilityAmount(orgID, liabilityID string, currentAmount int64) (*models.Liability, error)
	DeleteLiability(orgID, liabilityID string) error
	SumCurrentAmounts(orgID string) (int64, error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// OrganizationServicer defines the contract for organization, member, and
// invitation management.
type OrganizationServicer interface {
	CreateOrganization(ownerID, name, description string) (*models.Organization, error)
	GetOrganizationByID(orgID string) (*models.Organization, error)
	ListUserOrganizations(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Organization], error)
	ListMembers(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Membership], error)
	RemoveMember(orgID, userID string) error
	InviteMember(orgID, invitedByID, email string, role models.MemberRole) (*models.Invitation, error)
	AcceptInvitation(userID, token string) (*models.Membership, error)
	RevokeInvitation(orgID, invitationID string) error
	ListInvitations(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Invitation], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(orgID, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
