package models

import "time"

// MemberRole represents a member's role within an organization
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// InvitationStatus represents the lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Organization is the tenant boundary. Every category, goal, transaction,
// asset and liability belongs to exactly one organization.
type Organization struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Members []Membership `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

// Membership links a user to an organization with a role.
type Membership struct {
	Base
	OrganizationID string     `gorm:"type:uuid;not null;uniqueIndex:idx_org_user" json:"organization_id"`
	UserID         string     `gorm:"type:uuid;not null;uniqueIndex:idx_org_user" json:"user_id"`
	Role           MemberRole `gorm:"not null;default:'member'" json:"role"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Invitation is a pending offer to join an organization, redeemed by token.
type Invitation struct {
	Base
	OrganizationID string           `gorm:"type:uuid;not null" json:"organization_id"`
	Email          string           `gorm:"not null" json:"email"`
	Role           MemberRole       `gorm:"not null;default:'member'" json:"role"`
	Token          string           `gorm:"uniqueIndex;not null" json:"-"`
	Status         InvitationStatus `gorm:"not null;default:'pending'" json:"status"`
	ExpiresAt      time.Time        `gorm:"not null" json:"expires_at"`
	InvitedByID    string           `gorm:"type:uuid;not null" json:"invited_by_id"`
}
