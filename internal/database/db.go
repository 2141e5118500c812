package database

import (
	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		config.Logger().WithError(err).Fatal("could not connect to database")
	}

	if err := Migrate(DB); err != nil {
		config.Logger().WithError(err).Fatal("migration failed")
	}

	config.Logger().Info("database connected, migration complete")
}

// Migrate runs AutoMigrate for every entity. Split out from Init so tests
// can run the same schema against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.FeeTransaction{},
		&models.Expense{},
		&models.AuditLog{},
	)
}
