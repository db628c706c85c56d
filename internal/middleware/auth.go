package middleware

import (
	"net/http"
	"strings"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("userApproval", claims.ApprovalStatus)

		c.Next()
	}
}

// ApprovalMiddleware blocks accounts that have not been approved yet. It
// should be used *after* AuthMiddleware. The approval status is read from the
// database, not the token, so an admin decision takes effect on the next
// request instead of waiting for the access token to expire. Rejected accounts
// are treated as if logged out; pending accounts get a distinct message the
// client can route to its holding page.
func ApprovalMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			utils.InternalServerError(c, "User ID not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		var user models.User
		if err := db.Select("approval_status").First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.Unauthorized(c, "Account no longer exists")
			} else {
				utils.InternalServerError(c, "Database error checking approval status: "+err.Error())
			}
			c.Abort()
			return
		}
		c.Set("userApproval", user.ApprovalStatus)

		switch user.ApprovalStatus {
		case models.ApprovalRejected:
			utils.Unauthorized(c, "Your account has been rejected. Please contact the administrator.")
			c.Abort()
		case models.ApprovalPending:
			utils.Forbidden(c, "Your account is pending approval.")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware. On a role mismatch the response
// carries the caller's own default dashboard route so the client can redirect
// there.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRoleFromContext(c)
		if !exists {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorWithData(c, http.StatusForbidden, "You do not have permission to access this resource.",
			gin.H{"defaultRoute": models.DefaultDashboardRoute(role)})
		c.Abort()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// Helper function to get approval status from context
func GetUserApprovalFromContext(c *gin.Context) (models.ApprovalStatus, bool) {
	approval, exists := c.Get("userApproval")
	if !exists {
		return "", false
	}
	status, ok := approval.(models.ApprovalStatus)
	return status, ok
}
