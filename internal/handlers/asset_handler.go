package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// AssetHandler handles asset-related requests.
type AssetHandler struct {
	assetService services.AssetServicer
	auditService services.AuditServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService services.AssetServicer, auditService services.AuditServicer) *AssetHandler {
	return &AssetHandler{assetService: assetService, auditService: auditService}
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Type         models.AssetType `json:"type" binding:"required,asset_type"`
	CurrentValue int64            `json:"current_value" binding:"gte=0"`
	Currency     string           `json:"currency" binding:"omitempty,iso4217"`
	Description  string           `json:"description" binding:"max=500"`
}

// UpdateAssetValueRequest represents the request payload for updating an asset's value.
type UpdateAssetValueRequest struct {
	CurrentValue int64 `json:"current_value" binding:"gte=0"`
}

// CreateAsset handles the creation of a new asset.
// @Summary     Create an asset
// @Description Record an asset with its current value in minor units
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     201 {object} models.Asset "Asset created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/assets [post]
func (h *AssetHandler) CreateAsset(c *gin.Context) {
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

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.CreateAsset(orgID, req.Name, req.Type, req.CurrentValue, req.Currency, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "CREATE_ASSET", "asset", asset.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "current_value": req.CurrentValue})

	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// GetAssets handles listing assets.
// @Summary     Get assets
// @Description Get a paginated list of the organization's assets
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID     path  string true "Organization ID"
// @Param       page      query int   false "Page number (default 1)"
// @Param       page_size query int   false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Asset] "Paginated assets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/assets [get]
func (h *AssetHandler) GetAssets(c *gin.Context) {
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

	result, err := h.assetService.ListAssets(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAsset handles retrieving a specific asset.
// @Summary     Get asset by ID
// @Description Get a specific asset
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Asset ID"
// @Success     200 {object} models.Asset "Asset details"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	assetID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	asset, err := h.assetService.GetAssetByID(orgID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// UpdateAssetValue handles updating an asset's current value.
// @Summary     Update asset value
// @Description Set an asset's current value in minor units
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       id      path string true "Asset ID"
// @Param       request body UpdateAssetValueRequest true "New value"
// @Success     200 {object} models.Asset "Updated asset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/assets/{id}/value [put]
func (h *AssetHandler) UpdateAssetValue(c *gin.Context) {
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
	assetID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	asset, err := h.assetService.UpdateAssetValue(orgID, assetID, req.CurrentValue)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "UPDATE_ASSET_VALUE", "asset", asset.ID, c.ClientIP(),
		map[string]interface{}{"current_value": req.CurrentValue})

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// DeleteAsset handles deleting an asset.
// @Summary     Delete asset
// @Description Delete an asset
// @Tags        assets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Asset ID"
// @Success     200 {object} MessageResponse "Asset deleted"
// @Failure     400 {object} ErrorResponse "Invalid asset ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
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
	assetID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.assetService.DeleteAsset(orgID, assetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "DELETE_ASSET", "asset", assetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully"})
}
