package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/herald-dev/herald/internal/store"
	"github.com/herald-dev/herald/internal/types"
	"github.com/herald-dev/herald/internal/utils"
)

func GrantAdmin(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	user, err := store.GrantAdmin(userID)

	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Grant failed", "error": "user not found"})
			return
		}
		log.Printf("Failed to grant admin to user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Grant failed", "error": "internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Admin privileges granted",
		"user":    types.NewUserResponse(user),
	})
}

func DeleteUser(ctx *gin.Context) {
	userID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	user, err := store.SoftDeleteUser(userID)

	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Delete failed", "error": "user not found"})
			return
		}
		log.Printf("Failed to delete user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed", "error": "internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"user":    types.NewUserResponse(user),
	})
}
