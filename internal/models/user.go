package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`

	// Back-reference to notifications addressed to this user. The join table
	// is the authoritative recipient record; this association is a view of it.
	Notifications []Notification `gorm:"many2many:notification_recipients"`
}
