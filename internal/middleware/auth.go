package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/auth"
	"github.com/herald-dev/herald/internal/models"
	"github.com/herald-dev/herald/internal/types"
)

type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// AuthMiddleware verifies the session token and attaches the caller's
// identity to the request context. The token comes from the session cookie;
// a Bearer header is accepted as a fallback for non-browser clients.
func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "missing token"})
			return
		}

		claims, err := auth.VerifyJWT(tokenString)

		if err != nil {
			reason := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "token expired"
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": reason})
			return
		}

		var user models.User

		// Default scope skips soft-deleted users, so a deleted user's token
		// stops working even before it expires.
		if err := db.DB.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not found"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsAdmin:  user.IsAdmin,
		})
		ctx.Next()
	}
}

// RequireAdmin gates privileged mutations. It stacks on AuthMiddleware and
// never replaces it.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		user, ok := value.(AuthenticatedUser)

		if !exists || !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "missing identity"})
			return
		}

		if !user.IsAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin privileges required", "error": "forbidden"})
			return
		}

		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
