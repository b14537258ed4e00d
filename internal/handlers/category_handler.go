package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=100"`
	Type         models.CategoryType `json:"type" binding:"required,category_type"`
	ParentID     *string             `json:"parent_id" binding:"omitempty,uuid"`
	Description  string              `json:"description" binding:"max=500"`
	Icon         string              `json:"icon" binding:"max=50"`
	Color        string              `json:"color" binding:"omitempty,hex_color"`
	DisplayOrder int                 `json:"display_order"`
}

// UpdateCategoryRequest represents the request payload for updating a
// category. Absent fields are left unchanged; move_to_root detaches the
// category from its parent.
type UpdateCategoryRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Type         *models.CategoryType `json:"type" binding:"omitempty,category_type"`
	ParentID     *string              `json:"parent_id" binding:"omitempty,uuid"`
	MoveToRoot   bool                 `json:"move_to_root"`
	Description  *string              `json:"description" binding:"omitempty,max=500"`
	Icon         *string              `json:"icon" binding:"omitempty,max=50"`
	Color        *string              `json:"color" binding:"omitempty,hex_color"`
	IsActive     *bool                `json:"is_active"`
	DisplayOrder *int                 `json:"display_order"`
}

// parseCategoryType validates an optional type query parameter.
func parseCategoryType(c *gin.Context) (*models.CategoryType, error) {
	v := c.Query("type")
	if v == "" {
		return nil, nil
	}
	t := models.CategoryType(v)
	switch t {
	case models.CategoryTypeIncome, models.CategoryTypeExpense, models.CategoryTypeTransfer:
		return &t, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'income', 'expense' or 'transfer'")
}

// CreateCategory handles the creation of a new category.
// @Summary     Create a category
// @Description Create a new transaction category, optionally under a parent
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input, depth exceeded, or type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Parent category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
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

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(orgID, services.CreateCategoryInput{
		Name:         req.Name,
		Type:         req.Type,
		ParentID:     req.ParentID,
		Description:  req.Description,
		Icon:         req.Icon,
		Color:        req.Color,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "parent_id": req.ParentID})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories handles listing categories as a flat paginated list.
// @Summary     Get categories
// @Description Get a paginated flat list of the organization's categories
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID            path  string true  "Organization ID"
// @Param       type             query string false "Filter by category type (income/expense/transfer)"
// @Param       include_inactive query bool   false "Include soft-deleted categories"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
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

	categoryType, err := parseCategoryType(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	includeInactive := c.Query("include_inactive") == "true"

	result, err := h.categoryService.ListCategories(orgID, categoryType, includeInactive, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCategoryTree handles retrieving the full category hierarchy.
// @Summary     Get category tree
// @Description Get the organization's categories as a nested tree with usage counts
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID            path  string true  "Organization ID"
// @Param       type             query string false "Filter by category type (income/expense/transfer)"
// @Param       include_inactive query bool   false "Include soft-deleted categories"
// @Success     200 {array} models.CategoryNode "Category tree"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories/tree [get]
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryType, err := parseCategoryType(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	includeInactive := c.Query("include_inactive") == "true"

	tree, err := h.categoryService.GetCategoryTree(orgID, categoryType, includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if tree == nil {
		tree = []*models.CategoryNode{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// GetCategory handles retrieving a specific category.
// @Summary     Get category by ID
// @Description Get a specific category with its parent and children resolved
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Category ID"
// @Success     200 {object} models.Category "Category details"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(orgID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory handles updating a category.
// @Summary     Update category
// @Description Update a category's fields, type, or position in the hierarchy
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       id      path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Updated category details"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input, cycle, depth exceeded, or type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category has children or is in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
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
	categoryID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.ParentID != nil && req.MoveToRoot {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "parent_id and move_to_root are mutually exclusive"))
		return
	}

	category, err := h.categoryService.UpdateCategory(orgID, categoryID, services.UpdateCategoryInput{
		Name:         req.Name,
		Type:         req.Type,
		ParentID:     req.ParentID,
		MoveToRoot:   req.MoveToRoot,
		Description:  req.Description,
		Icon:         req.Icon,
		Color:        req.Color,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "UPDATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type, "parent_id": req.ParentID, "move_to_root": req.MoveToRoot})

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory handles deleting a category.
// @Summary     Delete category
// @Description Delete a category. Categories referenced by transactions are deactivated unless force=true, which detaches the transactions and removes the category permanently.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path  string true  "Organization ID"
// @Param       id    path  string true  "Category ID"
// @Param       force query bool   false "Permanently delete even when referenced by transactions"
// @Success     200 {object} services.DeleteCategoryResult "Delete outcome"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category has children"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
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
	categoryID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	force := c.Query("force") == "true"

	result, err := h.categoryService.DeleteCategory(orgID, categoryID, force)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "DELETE_CATEGORY", "category", categoryID, c.ClientIP(),
		map[string]interface{}{"force": force, "deleted_permanently": result.DeletedPermanently})

	c.JSON(http.StatusOK, gin.H{
		"message":             "Category deleted successfully",
		"deleted_permanently": result.DeletedPermanently,
	})
}
