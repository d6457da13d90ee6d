package db

import (
	"context"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commandRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommandRepository(db *gorm.DB, log *logger.Logger) ports.CommandRepository {
	return &commandRepository{db: db, log: log}
}

func (r *commandRepository) Insert(ctx context.Context, cmd *domain.Command) error {
	if cmd.ID == "" {
		cmd.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(cmd).Error; err != nil {
		r.log.Errorw("command_repo_insert_failed", "host_id", cmd.HostID, "type", cmd.Type, "error", err)
		return err
	}
	r.log.Infow("command_repo_insert_ok", "id", cmd.ID, "host_id", cmd.HostID, "type", cmd.Type)
	return nil
}

func (r *commandRepository) GetByID(ctx context.Context, id string) (*domain.Command, error) {
	var cmd domain.Command
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cmd).Error; err != nil {
		r.log.Errorw("command_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &cmd, nil
}

func (r *commandRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Command, error) {
	tx := r.db.WithContext(ctx)
	// sqlite locks the whole database per transaction and rejects FOR UPDATE
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cmd domain.Command
	if err := tx.Where("id = ?", id).First(&cmd).Error; err != nil {
		r.log.Errorw("command_repo_get_for_update_failed", "id", id, "error", err)
		return nil, err
	}
	return &cmd, nil
}

func (r *commandRepository) PendingForHost(ctx context.Context, hostID string, filter *domain.CommandType) ([]domain.Command, error) {
	query := r.db.WithContext(ctx).
		Where("host_id = ? AND acked_at IS NULL", hostID).
		Order("created_at asc, id asc")
	if filter != nil {
		query = query.Where("type = ?", *filter)
	}

	var cmds []domain.Command
	if err := query.Find(&cmds).Error; err != nil {
		r.log.Errorw("command_repo_pending_failed", "host_id", hostID, "error", err)
		return nil, err
	}
	return cmds, nil
}

// UpdateOutcome is the compare-and-set half of the ack protocol. The WHERE
// clause guards against overwriting a row another ack already claimed; the
// caller inspects the returned row count and the current row state to tell
// an idempotent replay from a conflict.
func (r *commandRepository) UpdateOutcome(ctx context.Context, id string, code domain.ExitCode, message *string, retryHint *uint64, ackedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Command{}).
		Where("id = ? AND acked_at IS NULL", id).
		Updates(map[string]interface{}{
			"exit_code":          code,
			"exit_message":       message,
			"retry_hint_seconds": retryHint,
			"acked_at":           ackedAt,
		})
	if result.Error != nil {
		r.log.Errorw("command_repo_update_outcome_failed", "id", id, "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
