package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListFilter narrows ListForUser to notifications created in [From, To].
type ListFilter struct {
	From *time.Time
	To   *time.Time
}

// CreateNotification creates a notification addressed to the given users.
//
// This is a best-effort two-step write: the notification row first, then the
// recipient join rows. There is no transaction; a failure between the steps
// surfaces as ErrPartialWrite and leaves a notification addressed to nobody,
// which no recipient-scoped operation can reach.
func CreateNotification(message string, recipientIDs []uint, data datatypes.JSON) (*models.Notification, error) {
	if strings.TrimSpace(message) == "" || len(recipientIDs) == 0 {
		return nil, ErrInvalidInput
	}

	seen := make(map[uint]bool, len(recipientIDs))
	ids := make([]uint, 0, len(recipientIDs))

	for _, id := range recipientIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	var recipients []models.User

	if err := db.DB.Where("id IN ?", ids).Find(&recipients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recipients: %w", err)
	}

	if len(recipients) != len(ids) {
		return nil, ErrUserNotFound
	}

	notification := models.Notification{
		Message: message,
		Data:    data,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := db.DB.Model(&notification).Association("Recipients").Append(&recipients); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartialWrite, err)
	}

	notification.Recipients = recipients

	return &notification, nil
}

// ListForUser returns the notifications addressed to the user, newest first.
func ListForUser(userID uint, filter ListFilter) ([]models.Notification, error) {
	query := db.DB.
		Model(&models.Notification{}).
		Select("notifications.*").
		Joins("JOIN notification_recipients nr ON nr.notification_id = notifications.id").
		Where("nr.user_id = ?", userID)

	if filter.From != nil {
		query = query.Where("notifications.created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("notifications.created_at <= ?", *filter.To)
	}

	var notifications []models.Notification

	if err := query.
		Preload("Recipients").
		Order("notifications.created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead sets the shared read flag on the given notifications. Ids not
// addressed to the caller are silently skipped. Returns the number of rows
// matched, so repeating the call is harmless.
func MarkRead(notificationIDs []uint, callerID uint) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	addressed := db.DB.
		Table("notification_recipients").
		Select("notification_id").
		Where("user_id = ?", callerID)

	result := db.DB.
		Model(&models.Notification{}).
		Where("id IN ?", notificationIDs).
		Where("id IN (?)", addressed).
		Update("is_read", true)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// MarkAllRead sets the read flag on every unread notification addressed to
// the caller.
func MarkAllRead(callerID uint) (int64, error) {
	addressed := db.DB.
		Table("notification_recipients").
		Select("notification_id").
		Where("user_id = ?", callerID)

	result := db.DB.
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Where("id IN (?)", addressed).
		Update("is_read", true)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteNotification removes the notification and pulls it from every
// recipient's back-reference list. Only a recipient or an admin may delete.
func DeleteNotification(id, callerID uint, isAdmin bool) error {
	var notification models.Notification

	if err := db.DB.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to fetch notification: %w", err)
	}

	if !isAdmin {
		var count int64

		if err := db.DB.
			Table("notification_recipients").
			Where("notification_id = ? AND user_id = ?", id, callerID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check recipients: %w", err)
		}

		if count == 0 {
			return ErrForbidden
		}
	}

	if err := db.DB.Model(&notification).Association("Recipients").Clear(); err != nil {
		return fmt.Errorf("failed to clear recipients: %w", err)
	}

	if err := db.DB.Delete(&notification).Error; err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	return nil
}
