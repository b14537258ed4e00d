package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction represents a financial transaction in an organization.
// Amount is in minor units and signed: income is positive, expense negative.
type Transaction struct {
	Base
	OrganizationID string          `gorm:"type:uuid;not null;index" json:"organization_id"`
	CategoryID     *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type           TransactionType `gorm:"not null" json:"type"`
	Amount         int64           `gorm:"type:bigint;not null" json:"amount"`
	Description    string          `json:"description"`
	Date           time.Time       `gorm:"not null;index" json:"date"`
	CreatedByID    string          `gorm:"type:uuid" json:"created_by_id"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
