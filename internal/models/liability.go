package models

import "time"

// LiabilityType represents the kind of debt being tracked
type LiabilityType string

const (
	LiabilityTypeLoan       LiabilityType = "loan"
	LiabilityTypeMortgage   LiabilityType = "mortgage"
	LiabilityTypeCreditCard LiabilityType = "credit_card"
	LiabilityTypeOther      LiabilityType = "other"
)

// Liability represents an outstanding debt of an organization.
// CurrentAmount is the remaining balance in minor units, always >= 0.
type Liability struct {
	Base
	OrganizationID string        `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string        `gorm:"not null" json:"name"`
	Type           LiabilityType `gorm:"not null" json:"type"`
	CurrentAmount  int64         `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	InterestRate   float64       `json:"interest_rate,omitempty"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	Description    string        `json:"description"`
}
