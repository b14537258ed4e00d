package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// OrganizationHandler handles organization, member, and invitation requests.
type OrganizationHandler struct {
	organizationService services.OrganizationServicer
	auditService        services.AuditServicer
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(organizationService services.OrganizationServicer, auditService services.AuditServicer) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService, auditService: auditService}
}

// CreateOrganizationRequest represents the request payload for creating an organization.
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// InviteMemberRequest represents the request payload for inviting a member.
type InviteMemberRequest struct {
	Email string            `json:"email" binding:"required,email,max=255"`
	Role  models.MemberRole `json:"role" binding:"required,member_role"`
}

// AcceptInvitationRequest represents the request payload for accepting an invitation.
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreateOrganization handles the creation of a new organization.
// @Summary     Create an organization
// @Description Create an organization owned by the authenticated user, with default categories seeded
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOrganizationRequest true "Organization details"
// @Success     201 {object} models.Organization "Organization created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	org, err := h.organizationService.CreateOrganization(userID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(org.ID, userID, "CREATE_ORGANIZATION", "organization", org.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

// GetOrganizations handles listing the authenticated user's organizations.
// @Summary     Get organizations
// @Description Get a paginated list of organizations the authenticated user belongs to
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Organization] "Paginated organizations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations [get]
func (h *OrganizationHandler) GetOrganizations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.organizationService.ListUserOrganizations(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrganization handles retrieving a specific organization.
// @Summary     Get organization by ID
// @Description Get a specific organization the user is a member of
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Success     200 {object} models.Organization "Organization details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Organization not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	org, err := h.organizationService.GetOrganizationByID(orgID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// GetMembers handles listing an organization's members.
// @Summary     Get members
// @Description Get a paginated list of the organization's members
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID     path  string true "Organization ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Membership] "Paginated members"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/members [get]
func (h *OrganizationHandler) GetMembers(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.organizationService.ListMembers(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveMember handles removing a member from an organization.
// @Summary     Remove member
// @Description Remove a member from the organization (owners cannot be removed)
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID  path string true "Organization ID"
// @Param       userID path string true "User ID of the member to remove"
// @Success     200 {object} MessageResponse "Member removed"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not allowed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/members/{userID} [delete]
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	memberUserID, err := pathID(c, "userID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.organizationService.RemoveMember(orgID, memberUserID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, actorID, "REMOVE_MEMBER", "membership", memberUserID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// InviteMember handles creating a member invitation.
// @Summary     Invite member
// @Description Invite a user by email to join the organization
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       request body InviteMemberRequest true "Invitation details"
// @Success     201 {object} models.Invitation "Invitation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not allowed"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/invitations [post]
func (h *OrganizationHandler) InviteMember(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invitation, err := h.organizationService.InviteMember(orgID, userID, req.Email, req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "INVITE_MEMBER", "invitation", invitation.ID, c.ClientIP(),
		map[string]interface{}{"email": req.Email, "role": req.Role})

	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

// GetInvitations handles listing an organization's invitations.
// @Summary     Get invitations
// @Description Get a paginated list of the organization's invitations
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID     path  string true "Organization ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Invitation] "Paginated invitations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not allowed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/invitations [get]
func (h *OrganizationHandler) GetInvitations(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.organizationService.ListInvitations(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RevokeInvitation handles revoking a pending invitation.
// @Summary     Revoke invitation
// @Description Revoke a pending invitation
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Invitation ID"
// @Success     200 {object} MessageResponse "Invitation revoked"
// @Failure     400 {object} ErrorResponse "Invalid invitation ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Failure     409 {object} ErrorResponse "Invitation no longer pending"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/invitations/{id} [delete]
func (h *OrganizationHandler) RevokeInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invitationID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.organizationService.RevokeInvitation(orgID, invitationID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "REVOKE_INVITATION", "invitation", invitationID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked successfully"})
}

// AcceptInvitation handles redeeming an invitation token.
// @Summary     Accept invitation
// @Description Accept an invitation token and join the organization
// @Tags        organizations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AcceptInvitationRequest true "Invitation token"
// @Success     200 {object} models.Membership "Membership created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Failure     409 {object} ErrorResponse "Invitation no longer pending"
// @Failure     410 {object} ErrorResponse "Invitation expired"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /invitations/accept [post]
func (h *OrganizationHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	membership, err := h.organizationService.AcceptInvitation(userID, req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(membership.OrganizationID, userID, "ACCEPT_INVITATION", "membership", membership.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}
