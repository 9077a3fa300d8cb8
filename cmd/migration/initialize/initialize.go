package initialize

import (
	"cleanhub/config"
	"cleanhub/internal/database"

	logger "github.com/Bparsons0904/goLogger"
)

// InitializeTables adds what AutoMigrate cannot express and is safe to rerun.
func InitializeTables(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing tables", "environment", config.Environment)

	if err := db.CreateIndexes(); err != nil {
		return log.Err("failed to create indexes", err)
	}

	log.Info("Table initialization complete")
	return nil
}
