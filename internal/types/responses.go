package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/herald-dev/herald/internal/models"
)

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type NotificationResponse struct {
	ID           uint           `json:"id"`
	Message      string         `json:"message"`
	IsRead       bool           `json:"is_read"`
	Data         datatypes.JSON `json:"data,omitempty"`
	RecipientIDs []uint         `json:"recipient_ids"`
	CreatedAt    time.Time      `json:"created_at"`
}

func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}

func NewNotificationResponse(notification *models.Notification) NotificationResponse {
	recipientIDs := make([]uint, 0, len(notification.Recipients))

	for _, recipient := range notification.Recipients {
		recipientIDs = append(recipientIDs, recipient.ID)
	}

	return NotificationResponse{
		ID:           notification.ID,
		Message:      notification.Message,
		IsRead:       notification.IsRead,
		Data:         notification.Data,
		RecipientIDs: recipientIDs,
		CreatedAt:    notification.CreatedAt,
	}
}
