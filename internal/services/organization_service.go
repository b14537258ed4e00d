package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/config"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	appuuid "fintrack/internal/uuid"
)

// organizationService handles organization, member, and invitation
// management.
type organizationService struct {
	db         *gorm.DB
	categories CategoryServicer
}

// NewOrganizationService creates a new OrganizationServicer.
func NewOrganizationService(db *gorm.DB, categories CategoryServicer) OrganizationServicer {
	return &organizationService{db: db, categories: categories}
}

// CreateOrganization creates an organization with the creator as owner and
// seeds the default category set. Organization and membership are written
// in one transaction.
func (s *organizationService) CreateOrganization(ownerID, name, description string) (*models.Organization, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "organization name is required")
	}

	org := &models.Organization{Name: name, Description: description}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		membership := &models.Membership{
			OrganizationID: org.ID,
			UserID:         ownerID,
			Role:           models.MemberRoleOwner,
		}
		if err := tx.Create(membership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.categories.SeedDefaultCategories(org.ID); err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganizationByID retrieves an organization.
func (s *organizationService) GetOrganizationByID(orgID string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.Where("id = ?", orgID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &org, nil
}

// ListUserOrganizations returns the organizations a user belongs to.
func (s *organizationService) ListUserOrganizations(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Organization], error) {
	page.Defaults()

	base := s.db.Model(&models.Organization{}).
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ? AND memberships.deleted_at IS NULL", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var orgs []models.Organization
	if err := base.Order("organizations.name ASC").Scopes(pagination.Paginate(page)).Find(&orgs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(orgs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListMembers returns the organization's memberships with user details.
func (s *organizationService) ListMembers(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Membership], error) {
	page.Defaults()

	base := s.db.Model(&models.Membership{}).Where("organization_id = ?", orgID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members []models.Membership
	if err := base.Preload("User").Scopes(pagination.Paginate(page)).Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(members, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// RemoveMember removes a user from the organization. Owners cannot be
// removed.
func (s *organizationService) RemoveMember(orgID, userID string) error {
	var membership models.Membership
	err := s.db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotAMember
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if membership.Role == models.MemberRoleOwner {
		return apperrors.WithMessage(apperrors.ErrForbidden, "the organization owner cannot be removed")
	}

	if err := s.db.Delete(&membership).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// InviteMember creates a pending invitation with an expiring token.
func (s *organizationService) InviteMember(orgID, invitedByID, email string, role models.MemberRole) (*models.Invitation, error) {
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	if role == models.MemberRoleOwner {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot invite a member as owner")
	}
	email = strings.ToLower(email)

	// Reject when the address already belongs to a member.
	var count int64
	err := s.db.Model(&models.Membership{}).
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.organization_id = ? AND users.email = ?", orgID, email).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrAlreadyAMember
	}

	invitation := &models.Invitation{
		OrganizationID: orgID,
		Email:          email,
		Role:           role,
		Token:          appuuid.New(),
		Status:         models.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(config.Get().InvitationTTL),
		InvitedByID:    invitedByID,
	}
	if err := s.db.Create(invitation).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invitation, nil
}

// AcceptInvitation redeems a pending invitation token for the given user,
// creating the membership and marking the invitation accepted atomically.
func (s *organizationService) AcceptInvitation(userID, token string) (*models.Membership, error) {
	var membership *models.Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.Where("token = ?", token).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvitationNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if invitation.Status != models.InvitationStatusPending {
			return apperrors.ErrInvitationNotPending
		}
		if invitation.ExpiresAt.Before(time.Now()) {
			if err := tx.Model(&invitation).Update("status", models.InvitationStatusExpired).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return apperrors.ErrInvitationExpired
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return apperrors.ErrUserNotFound
		}
		if !strings.EqualFold(user.Email, invitation.Email) {
			return apperrors.WithMessage(apperrors.ErrForbidden, "invitation was issued for a different email address")
		}

		var existing int64
		if err := tx.Model(&models.Membership{}).
			Where("organization_id = ? AND user_id = ?", invitation.OrganizationID, userID).
			Count(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			return apperrors.ErrAlreadyAMember
		}

		membership = &models.Membership{
			OrganizationID: invitation.OrganizationID,
			UserID:         userID,
			Role:           invitation.Role,
		}
		if err := tx.Create(membership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&invitation).Update("status", models.InvitationStatusAccepted).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// RevokeInvitation marks a pending invitation revoked.
func (s *organizationService) RevokeInvitation(orgID, invitationID string) error {
	var invitation models.Invitation
	err := s.db.Where("id = ? AND organization_id = ?", invitationID, orgID).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvitationNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if invitation.Status != models.InvitationStatusPending {
		return apperrors.ErrInvitationNotPending
	}
	if err := s.db.Model(&invitation).Update("status", models.InvitationStatusRevoked).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListInvitations returns the organization's invitations.
func (s *organizationService) ListInvitations(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Invitation], error) {
	page.Defaults()

	base := s.db.Model(&models.Invitation{}).Where("organization_id = ?", orgID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invitations []models.Invitation
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&invitations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(invitations, page.Page, page.PageSize, totalItems)
	return &result, nil
}
