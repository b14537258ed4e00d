package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fintrack/internal/models"
	appuuid "fintrack/internal/uuid"
)

// RequireMember resolves the :orgID path parameter, verifies the
// authenticated user is a member of that organization, and stores the
// organization ID and member role in the context. Every org-scoped route
// goes through this check so services can trust the organization ID.
func RequireMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		orgID := c.Param("orgID")
		if !appuuid.IsValid(orgID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
			c.Abort()
			return
		}

		var membership models.Membership
		err := db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this organization"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify membership"})
			}
			c.Abort()
			return
		}

		c.Set("organizationID", orgID)
		c.Set("memberRole", membership.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the member role set by RequireMember
// is one of the given roles. Owner passes every check.
func RequireRole(roles ...models.MemberRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("memberRole")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		memberRole := role.(models.MemberRole)
		if memberRole == models.MemberRoleOwner {
			c.Next()
			return
		}
		for _, r := range roles {
			if memberRole == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		c.Abort()
	}
}
