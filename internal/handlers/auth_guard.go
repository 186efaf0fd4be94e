package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/services"
)

// AuthGuard authenticates bearer tokens and enforces role policy
type AuthGuard struct {
	auth services.AuthService
}

func NewAuthGuard(auth services.AuthService) *AuthGuard {
	return &AuthGuard{auth: auth}
}

// AuthMiddleware resolves the bearer token to the stored user. Role checks
// downstream use the role from the database, not the one in the token.
func (g *AuthGuard) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Fields(authHeader)
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := g.auth.Authenticate(c.Request.Context(), tokenParts[1])
		if err != nil {
			if kind, ok := services.KindOf(err); ok && kind == services.KindUnauthenticated {
				abortUnauthorized(c, err.Error())
				return
			}
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
			c.Abort()
			return
		}

		if !user.IsActive {
			abortForbidden(c, services.ErrInactiveUser.Message)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)
		c.Request = c.Request.WithContext(events.WithClientIP(c.Request.Context(), c.ClientIP()))

		c.Next()
	}
}

// RequireRoleMiddleware admits only the listed roles. There is no hierarchy,
// so admins are not implicitly allowed.
func (g *AuthGuard) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			abortForbidden(c, err.Error())
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				c.Next()
				return
			}
		}

		abortForbidden(c, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles))
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
	c.Abort()
}

func abortForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "forbidden",
		"message": message,
	})
	c.Abort()
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
