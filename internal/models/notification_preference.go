package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationPreference struct {
	gorm.Model

	UserID   uint           `gorm:"not null;uniqueIndex:idx_user_channel"`
	Channel  string         `gorm:"not null;uniqueIndex:idx_user_channel"` // e.g., "email"
	IsActive bool           `gorm:"default:true"`
	Config   datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
