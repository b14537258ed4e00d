package models

// AssetType represents the kind of asset being tracked
type AssetType string

const (
	AssetTypeCash       AssetType = "cash"
	AssetTypeDeposit    AssetType = "deposit"
	AssetTypeInvestment AssetType = "investment"
	AssetTypeProperty   AssetType = "property"
	AssetTypeOther      AssetType = "other"
)

// Asset represents something of value an organization owns.
// CurrentValue is in minor units.
type Asset struct {
	Base
	OrganizationID string    `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string    `gorm:"not null" json:"name"`
	Type           AssetType `gorm:"not null" json:"type"`
	CurrentValue   int64     `gorm:"type:bigint;not null;default:0" json:"current_value"`
	Currency       string    `gorm:"not null;default:'USD'" json:"currency"`
	Description    string    `json:"description"`
}
