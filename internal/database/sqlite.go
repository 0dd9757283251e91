package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"invitation-bot/internal/models"
	"invitation-bot/internal/store"
)

// ConnectSQLite opens (creating if needed) the database file named in the
// configuration and ensures the schema exists. The containing directory
// is created first, so a fresh deployment needs no manual setup.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db directory %s: %v", store.ErrStorageUnavailable, dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", store.ErrStorageUnavailable, path, err)
	}

	log.Printf("Opened database %s", path)

	// Auto Migrate
	if err := db.AutoMigrate(&models.User{}, &models.Invitation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
