package models

import "gorm.io/gorm"

type Task struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index"` // Foreign key to the owning User
	Title       string `gorm:"not null"`
	Description string
	IsDone      bool `gorm:"not null;default:false"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
