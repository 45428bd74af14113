package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/herald-dev/herald/internal/metrics"
	"github.com/herald-dev/herald/internal/store"
	"github.com/herald-dev/herald/internal/types"
	"github.com/herald-dev/herald/internal/utils"
	"gorm.io/datatypes"
)

type CreateNotificationRequest struct {
	Message      string         `json:"message" binding:"required"`
	RecipientIDs []uint         `json:"recipient_ids" binding:"required,min=1"`
	Data         datatypes.JSON `json:"data"`
}

type MarkReadRequest struct {
	NotificationIDs []uint `json:"notification_ids" binding:"required,min=1"`
}

func CreateNotification(ctx *gin.Context) {
	var req CreateNotificationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	notification, err := store.CreateNotification(req.Message, req.RecipientIDs, req.Data)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Creation failed", "error": "message and recipients are required"})
		case errors.Is(err, store.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Creation failed", "error": "unknown recipient"})
		default:
			log.Printf("Failed to create notification: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Creation failed", "error": "internal server error"})
		}
		return
	}

	metrics.NotificationsCreatedTotal.Inc()

	response := types.NewNotificationResponse(notification)

	NotifyRecipients(response.RecipientIDs, response)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":      "Notification created successfully",
		"notification": response,
	})
}

func ListNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	filter, err := parseListFilter(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	notifications, err := store.ListForUser(currentUser.ID, filter)

	if err != nil {
		log.Printf("Failed to list notifications for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Listing failed", "error": "internal server error"})
		return
	}

	responses := make([]types.NotificationResponse, 0, len(notifications))

	for i := range notifications {
		responses = append(responses, types.NewNotificationResponse(&notifications[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":       "Notifications retrieved successfully",
		"notifications": responses,
	})
}

func MarkRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	var req MarkReadRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	updated, err := store.MarkRead(req.NotificationIDs, currentUser.ID)

	if err != nil {
		log.Printf("Failed to mark notifications read for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed", "error": "internal server error"})
		return
	}

	metrics.NotificationsReadTotal.Add(float64(updated))

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Notifications marked read",
		"updated": updated,
	})
}

func MarkAllRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	updated, err := store.MarkAllRead(currentUser.ID)

	if err != nil {
		log.Printf("Failed to mark all notifications read for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed", "error": "internal server error"})
		return
	}

	metrics.NotificationsReadTotal.Add(float64(updated))

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Notifications marked read",
		"updated": updated,
	})
}

func DeleteNotification(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required", "error": "user not authenticated"})
		return
	}

	notificationID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	err = store.DeleteNotification(notificationID, currentUser.ID, currentUser.IsAdmin)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotificationNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Delete failed", "error": "notification not found"})
		case errors.Is(err, store.ErrForbidden):
			ctx.JSON(http.StatusForbidden, gin.H{"message": "Delete failed", "error": "not a recipient"})
		default:
			log.Printf("Failed to delete notification %d: %v", notificationID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed", "error": "internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

func parseListFilter(ctx *gin.Context) (store.ListFilter, error) {
	var filter store.ListFilter

	if from := ctx.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, errors.New("invalid 'from' timestamp")
		}
		filter.From = &t
	}

	if to := ctx.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, errors.New("invalid 'to' timestamp")
		}
		filter.To = &t
	}

	return filter, nil
}
