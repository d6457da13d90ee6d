package db

import (
	"github.com/blockwarden/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// AutoMigrate all models
	err := db.AutoMigrate(
		&domain.Organization{},
		&domain.User{},
		&domain.Blockchain{},
		&domain.Host{},
		&domain.Node{},
		&domain.Command{},
		&domain.NodeLog{},
	)
	if err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// Partial index serving the per-host pending queue scan
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_commands_pending
		ON commands (host_id, created_at, id)
		WHERE acked_at IS NULL AND deleted_at IS NULL
	`).Error; err != nil {
		return err
	}

	// Index for node log history lookups in creation order
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_node_logs_node_created
		ON node_logs (node_id, created_at)
	`).Error; err != nil {
		return err
	}

	return nil
}
