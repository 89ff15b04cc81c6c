package database

import (
	"os"
	"path/filepath"

	"license-validation-api/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the sqlite database under dataDir and migrates the schema.
func InitDB(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dbPath := filepath.Join(dataDir, "licenses.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&model.License{}, &model.ValidationRecord{}); err != nil {
		return err
	}

	DB = db
	return nil
}
