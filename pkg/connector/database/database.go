package database

import (
	"fmt"

	"github.com/docbridge/editor-connector/pkg/connector/models"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func Connect(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "connector_",
		}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the connector tables. Split out so tests can
// run it against sqlite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.StoredFile{},
		&models.Media{},
		&models.MediaRevision{},
		&models.Submission{},
		&models.SubmissionMarker{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
