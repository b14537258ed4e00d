package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// LiabilityHandler handles liability-related requests.
type LiabilityHandler struct {
	liabilityService services.LiabilityServicer
	auditService     services.AuditServicer
}

// NewLiabilityHandler creates a new LiabilityHandler.
func NewLiabilityHandler(liabilityService services.LiabilityServicer, auditService services.AuditServicer) *LiabilityHandler {
	return &LiabilityHandler{liabilityService: liabilityService, auditService: auditService}
}

// CreateLiabilityRequest represents the request payload for creating a liability.
type CreateLiabilityRequest struct {
	Name          string               `json:"name" binding:"required,min=1,max=100"`
	Type          models.LiabilityType `json:"type" binding:"required,liability_type"`
	CurrentAmount int64                `json:"current_amount" binding:"gte=0"`
	InterestRate  float64              `json:"interest_rate" binding:"gte=0"`
	DueDate       *time.Time           `json:"due_date"`
	Description   string               `json:"description" binding:"max=500"`
}

// UpdateLiabilityAmountRequest represents the request payload for updating a
// liability's remaining balance.
type UpdateLiabilityAmountRequest struct {
	CurrentAmount int64 `json:"current_amount" binding:"gte=0"`
}

// CreateLiability handles the creation of a new liability.
// @Summary     Create a liability
// @Description Record a liability with its remaining balance in minor units
// @Tags        liabilities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       request body CreateLiabilityRequest true "Liability details"
// @Success     201 {object} models.Liability "Liability created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/liabilities [post]
func (h *LiabilityHandler) CreateLiability(c *gin.Context) {
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

	var req CreateLiabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	liability, err := h.liabilityService.CreateLiability(orgID, req.Name, req.Type, req.CurrentAmount, req.InterestRate, req.DueDate, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "CREATE_LIABILITY", "liability", liability.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "current_amount": req.CurrentAmount})

	c.JSON(http.StatusCreated, gin.H{"liability": liability})
}

// GetLiabilities handles listing liabilities.
// @Summary     Get liabilities
// @Description Get a paginated list of the organization's liabilities
// @Tags        liabilities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID     path  string true "Organization ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Liability] "Paginated liabilities"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/liabilities [get]
func (h *LiabilityHandler) GetLiabilities(c *gin.Context) {
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

	result, err := h.liabilityService.ListLiabilities(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLiability handles retrieving a specific liability.
// @Summary     Get liability by ID
// @Description Get a specific liability
// @Tags        liabilities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Liability ID"
// @Success     200 {object} models.Liability "Liability details"
// @Failure     400 {object} ErrorResponse "Invalid liability ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Liability not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/liabilities/{id} [get]
func (h *LiabilityHandler) GetLiability(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	liabilityID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	liability, err := h.liabilityService.GetLiabilityByID(orgID, liabilityID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liability": liability})
}

// UpdateLiabilityAmount handles updating a liability's remaining balance.
// @Summary     Update liability amount
// @Description Set a liability's remaining balance in minor units
// @Tags        liabilities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       id      path string true "Liability ID"
// @Param       request body UpdateLiabilityAmountRequest true "New balance"
// @Success     200 {object} models.Liability "Updated liability"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Liability not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/liabilities/{id}/amount [put]
func (h *LiabilityHandler) UpdateLiabilityAmount(c *gin.Context) {
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
	liabilityID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLiabilityAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	liability, err := h.liabilityService.UpdateLiabilityAmount(orgID, liabilityID, req.CurrentAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "UPDATE_LIABILITY_AMOUNT", "liability", liability.ID, c.ClientIP(),
		map[string]interface{}{"current_amount": req.CurrentAmount})

	c.JSON(http.StatusOK, gin.H{"liability": liability})
}

// DeleteLiability handles deleting a liability.
// @Summary     Delete liability
// @Description Delete a liability
// @Tags        liabilities
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Liability ID"
// @Success     200 {object} MessageResponse "Liability deleted"
// @Failure     400 {object} ErrorResponse "Invalid liability ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Liability not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/liabilities/{id} [delete]
func (h *LiabilityHandler) DeleteLiability(c *gin.Context) {
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
	liabilityID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.liabilityService.DeleteLiability(orgID, liabilityID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "DELETE_LIABILITY", "liability", liabilityID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Liability deleted successfully"})
}
