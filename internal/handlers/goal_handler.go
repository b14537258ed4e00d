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

// GoalHandler handles financial goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=100"`
	Category     models.GoalCategory `json:"category" binding:"required,goal_category"`
	TargetAmount int64               `json:"target_amount" binding:"required,gt=0"`
	TargetDate   time.Time           `json:"target_date" binding:"required"`
	Priority     models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
	Description  string              `json:"description" binding:"max=500"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
type UpdateGoalRequest struct {
	Name         *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Category     *models.GoalCategory `json:"category" binding:"omitempty,goal_category"`
	TargetAmount *int64               `json:"target_amount" binding:"omitempty,gt=0"`
	TargetDate   *time.Time           `json:"target_date"`
	Priority     *models.GoalPriority `json:"priority" binding:"omitempty,goal_priority"`
	Description  *string              `json:"description" binding:"omitempty,max=500"`
	Status       *models.GoalStatus   `json:"status" binding:"omitempty,goal_status"`
}

// CreateGoal handles the creation of a new financial goal.
// @Summary     Create a goal
// @Description Create a financial goal; its current amount is computed from existing organization data
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.FinancialGoal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
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

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.CreateGoal(orgID, services.CreateGoalInput{
		Name:         req.Name,
		Category:     req.Category,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Priority:     req.Priority,
		Description:  req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "category": req.Category, "target_amount": req.TargetAmount})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals handles listing goals.
// @Summary     Get goals
// @Description Get a paginated list of the organization's goals
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID     path  string true  "Organization ID"
// @Param       status    query string false "Filter by status (active/completed/paused)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.FinancialGoal] "Paginated goals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
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

	var status *models.GoalStatus
	if v := c.Query("status"); v != "" {
		s := models.GoalStatus(v)
		if s != models.GoalStatusActive && s != models.GoalStatusCompleted && s != models.GoalStatusPaused {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'active', 'completed' or 'paused'"))
			return
		}
		status = &s
	}

	result, err := h.goalService.ListGoals(orgID, status, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoal handles retrieving a specific goal.
// @Summary     Get goal by ID
// @Description Get a specific goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Goal ID"
// @Success     200 {object} models.FinancialGoal "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(orgID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal handles updating a goal.
// @Summary     Update goal
// @Description Update a goal's fields; changing the category recomputes the current amount
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID   path string true "Organization ID"
// @Param       id      path string true "Goal ID"
// @Param       request body UpdateGoalRequest true "Updated goal details"
// @Success     200 {object} models.FinancialGoal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
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
	goalID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(orgID, goalID, services.UpdateGoalInput{
		Name:         req.Name,
		Category:     req.Category,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Priority:     req.Priority,
		Description:  req.Description,
		Status:       req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "UPDATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "category": req.Category, "status": req.Status})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles deleting a goal.
// @Summary     Delete goal
// @Description Delete a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
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
	goalID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(orgID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// GetGoalProgress handles retrieving a goal's derived pace snapshot.
// @Summary     Get goal progress
// @Description Get achievement rate, daily pace, and projected completion for a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Goal ID"
// @Success     200 {object} services.GoalProgress "Goal progress"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals/{id}/progress [get]
func (h *GoalHandler) GetGoalProgress(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	goalID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.goalService.GetGoalProgress(orgID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// RecalculateGoalProgress handles refreshing a goal's stored amount.
// @Summary     Recalculate goal progress
// @Description Recompute the goal's current amount from organization data and persist it
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       orgID path string true "Organization ID"
// @Param       id    path string true "Goal ID"
// @Success     200 {object} models.FinancialGoal "Goal with refreshed amount"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /organizations/{orgID}/goals/{id}/recalculate [post]
func (h *GoalHandler) RecalculateGoalProgress(c *gin.Context) {
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
	goalID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.RecalculateProgress(orgID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(orgID, userID, "RECALCULATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"current_amount": goal.CurrentAmount, "status": goal.Status})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}
