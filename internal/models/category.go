package models

// CategoryType represents the transaction type a category classifies
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeTransfer CategoryType = "transfer"
)

// MaxCategoryLevel is the deepest allowed level in a category tree.
// Levels are 0-based, so a tree holds at most three levels (0, 1, 2).
const MaxCategoryLevel = 2

// Category represents a transaction category. Categories form a forest per
// organization: each category has at most one parent and Level is always
// parent.Level+1 (0 for roots). Level is computed by the service, never
// taken from client input.
type Category struct {
	Base
	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string       `gorm:"not null" json:"name"`
	Type           CategoryType `gorm:"not null" json:"type"`
	ParentID       *string      `gorm:"type:uuid" json:"parent_id,omitempty"`
	Level          int          `gorm:"not null;default:0" json:"level"`
	Description    string       `json:"description"`
	Icon           string       `json:"icon"`
	Color          string       `gorm:"default:'#6366F1'" json:"color"`
	IsDefault      bool         `gorm:"default:false" json:"is_default"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
	DisplayOrder   int          `gorm:"default:0" json:"display_order"`

	// Relationships
	Parent       *Category     `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children     []Category    `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}

// CategoryNode is a category annotated with its resolved children and
// transaction usage count, as returned by the tree view.
type CategoryNode struct {
	Category
	UsageCount int64           `json:"usage_count"`
	Nodes      []*CategoryNode `json:"children"`
}
