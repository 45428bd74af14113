package store_test

import (
	"fmt"
	"testing"

	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the shared gorm handle at a fresh in-memory database.
// The database is named after the test so connections from the pool all see
// the same schema.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())
}

func createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     "user-" + email,
		Email:        email,
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.DB.Create(user).Error)

	return user
}

func recipientCount(t *testing.T, notificationID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.DB.
		Table("notification_recipients").
		Where("notification_id = ?", notificationID).
		Count(&count).Error)

	return count
}
