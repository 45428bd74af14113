package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/herald-dev/herald/internal/auth"
	"github.com/herald-dev/herald/internal/config"
	"github.com/herald-dev/herald/internal/metrics"
	"github.com/herald-dev/herald/internal/store"
	"github.com/herald-dev/herald/internal/types"
	"github.com/herald-dev/herald/internal/utils"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var (
	cookieDomain   string
	secureCookies  bool
	allowedOrigins []string
)

// Configure injects the deployment settings the handlers need. Called once
// from the router before any route is registered.
func Configure(cfg *config.Config) {
	cookieDomain = cfg.ServerConfig.Domain
	secureCookies = cfg.AuthConfig.SecureCookies
	allowedOrigins = cfg.ServerConfig.AllowedOrigins
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := store.RegisterUser(email, req.Username, req.Password)

	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Registration failed", "error": "email already exists"})
			return
		}
		log.Printf("Failed to register user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed", "error": "internal server error"})
		return
	}

	metrics.RegistrationsTotal.Inc()

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    types.NewUserResponse(user),
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := store.FindActiveByEmail(email)

	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Login failed", "error": "invalid email or password"})
			return
		}
		log.Printf("Failed to fetch user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed", "error": "internal server error"})
		return
	}

	if err := auth.ComparePasswordAndHash(req.Password, user.PasswordHash); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Login failed", "error": "invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.IsAdmin)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed", "error": "internal server error"})
		return
	}

	setSessionCookie(ctx, token, int(auth.TokenTTL.Seconds()))

	metrics.LoginsTotal.Inc()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"user":    types.NewUserResponse(user),
	})
}

func Logout(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Authenticated",
		"user":    currentUser,
	})
}

func setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cookieDomain,
		MaxAge:   maxAge,
		Secure:   secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
