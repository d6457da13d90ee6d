package db

import (
	"context"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// node_logs is append-only; no update or delete methods belong here.
type nodeLogRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeLogRepository(db *gorm.DB, log *logger.Logger) ports.NodeLogRepository {
	return &nodeLogRepository{db: db, log: log}
}

func (r *nodeLogRepository) Append(ctx context.Context, entry *domain.NodeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.log.Errorw("node_log_repo_append_failed", "node_id", entry.NodeID, "event", entry.Event, "error", err)
		return err
	}
	r.log.Infow("node_log_repo_append_ok", "id", entry.ID, "node_id", entry.NodeID, "event", entry.Event)
	return nil
}

func (r *nodeLogRepository) GetByNode(ctx context.Context, nodeID string) ([]domain.NodeLog, error) {
	var entries []domain.NodeLog
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		r.log.Errorw("node_log_repo_get_by_node_failed", "node_id", nodeID, "error", err)
		return nil, err
	}
	return entries, nil
}

func (r *nodeLogRepository) GetByNodeSince(ctx context.Context, nodeID string, since time.Time) ([]domain.NodeLog, error) {
	var entries []domain.NodeLog
	err := r.db.WithContext(ctx).
		Where("node_id = ? AND created_at > ?", nodeID, since).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		r.log.Errorw("node_log_repo_get_by_node_since_failed", "node_id", nodeID, "error", err)
		return nil, err
	}
	return entries, nil
}
