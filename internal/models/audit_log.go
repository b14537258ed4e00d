package models

// AuditLog records mutating operations within an organization for
// traceability.
type AuditLog struct {
	Base
	OrganizationID string `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action         string `gorm:"not null" json:"action"`
	ResourceType   string `gorm:"not null" json:"resource_type"`
	ResourceID     string `gorm:"type:uuid" json:"resource_id"`
	IPAddress      string `json:"ip_address"`
	Changes        string `json:"changes,omitempty"`
}
