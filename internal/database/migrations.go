package database

import (
	"cleanhub/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

// Models lists every table managed by AutoMigrate, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Property{},
		&models.CleaningService{},
		&models.LedgerEntry{},
		&models.Notification{},
		&models.Message{},
		&models.Review{},
	}
}

// MigrateModels creates or alters every table in Models, stopping at the
// first failure.
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range Models() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes adds the composite indexes the list and job queries rely on.
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_cleaning_services_status_expires ON cleaning_services(service_status, expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_cleaning_services_cleaner_status ON cleaning_services(cleaner_id, service_status, updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created ON ledger_entries(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, is_read, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_service_created ON messages(service_id, created_at)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
