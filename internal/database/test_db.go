package database

import (
	"license-validation-api/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitTestDB replaces DB with a fresh in-memory database for tests.
func InitTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	if err := db.AutoMigrate(&model.License{}, &model.ValidationRecord{}); err != nil {
		panic("failed to migrate test database")
	}

	DB = db
}

func CleanTestDB() {
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
