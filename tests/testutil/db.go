package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/madeiras-ouro-preto/sales-api/config"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with every table migrated.
// The database disappears when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase("sqlite://file:"+uuid.NewString()+"?mode=memory&cache=shared", "silent")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection keeps the memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.MigrateDatabase(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}
