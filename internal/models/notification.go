package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	Message string `gorm:"not null"`

	// IsRead is shared across all recipients: any recipient marking the
	// notification read marks it read for everyone. Known semantic
	// limitation, kept as the observable contract.
	IsRead bool `gorm:"not null;default:false"`

	Data datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Recipients []User `gorm:"many2many:notification_recipients"`
}
