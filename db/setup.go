package db

import (
	"github.com/tasknest-dev/tasknest/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB

	// DSN is kept for the health check's raw database/sql ping.
	DSN string
)

func ConnectDatabase(dsn string) error {
	var err error

	DSN = dsn

	// TranslateError maps driver unique-violations to gorm.ErrDuplicatedKey,
	// which the register handler relies on instead of a check-then-insert.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Task{},
		&models.NotificationPreference{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
