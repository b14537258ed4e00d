package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestOrganization creates an organization owned by the given user,
// including the owner membership.
func CreateTestOrganization(t *testing.T, db *gorm.DB, ownerID string) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name: fmt.Sprintf("Test Org %d", nextID()),
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	membership := &models.Membership{
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           models.MemberRoleOwner,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create owner membership: %v", err)
	}
	return org
}

// CreateTestMembership adds a user to an organization with the given role.
func CreateTestMembership(t *testing.T, db *gorm.DB, orgID, userID string, role models.MemberRole) *models.Membership {
	t.Helper()

	membership := &models.Membership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return membership
}

// CreateTestCategory creates a root category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, orgID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		OrganizationID: orgID,
		Name:           fmt.Sprintf("Test Category %d", nextID()),
		Type:           categoryType,
		IsActive:       true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestChildCategory creates a category under the given parent,
// inheriting its type with level parent+1.
func CreateTestChildCategory(t *testing.T, db *gorm.DB, parent *models.Category) *models.Category {
	t.Helper()

	category := &models.Category{
		OrganizationID: parent.OrganizationID,
		Name:           fmt.Sprintf("Test Child Category %d", nextID()),
		Type:           parent.Type,
		ParentID:       &parent.ID,
		Level:          parent.Level + 1,
		IsActive:       true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test child category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and signed
// amount (in cents) in the given category.
func CreateTestTransaction(t *testing.T, db *gorm.DB, orgID string, categoryID *string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		OrganizationID: orgID,
		CategoryID:     categoryID,
		Type:           txType,
		Amount:         amount,
		Date:           time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestAsset creates an asset with the given current value (in cents).
func CreateTestAsset(t *testing.T, db *gorm.DB, orgID string, value int64) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		OrganizationID: orgID,
		Name:           fmt.Sprintf("Test Asset %d", nextID()),
		Type:           models.AssetTypeCash,
		CurrentValue:   value,
		Currency:       "USD",
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestLiability creates a liability with the given remaining balance
// (in cents).
func CreateTestLiability(t *testing.T, db *gorm.DB, orgID string, amount int64) *models.Liability {
	t.Helper()

	liability := &models.Liability{
		OrganizationID: orgID,
		Name:           fmt.Sprintf("Test Liability %d", nextID()),
		Type:           models.LiabilityTypeLoan,
		CurrentAmount:  amount,
	}
	if err := db.Create(liability).Error; err != nil {
		t.Fatalf("failed to create test liability: %v", err)
	}
	return liability
}

// CreateTestGoal creates an active goal with the given category, target and
// current amounts (in cents), due 30 days from now.
func CreateTestGoal(t *testing.T, db *gorm.DB, orgID string, category models.GoalCategory, target, current int64) *models.FinancialGoal {
	t.Helper()

	goal := &models.FinancialGoal{
		OrganizationID: orgID,
		Name:           fmt.Sprintf("Test Goal %d", nextID()),
		Category:       category,
		TargetAmount:   target,
		CurrentAmount:  current,
		TargetDate:     time.Now().AddDate(0, 0, 30),
		Priority:       models.GoalPriorityMedium,
		Status:         models.GoalStatusActive,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
