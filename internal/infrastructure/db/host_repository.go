package db

import (
	"context"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type hostRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHostRepository(db *gorm.DB, log *logger.Logger) ports.HostRepository {
	return &hostRepository{db: db, log: log}
}

func (r *hostRepository) Create(ctx context.Context, host *domain.Host) error {
	if host.ID == "" {
		host.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(host).Error; err != nil {
		r.log.Errorw("host_repo_create_failed", "name", host.Name, "error", err)
		return err
	}
	r.log.Infow("host_repo_create_ok", "id", host.ID, "name", host.Name)
	return nil
}

func (r *hostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	var host domain.Host
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&host).Error; err != nil {
		r.log.Errorw("host_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &host, nil
}

func (r *hostRepository) GetByOrgID(ctx context.Context, orgID string) ([]domain.Host, error) {
	var hosts []domain.Host
	if err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Find(&hosts).Error; err != nil {
		r.log.Errorw("host_repo_get_by_org_failed", "org_id", orgID, "error", err)
		return nil, err
	}
	return hosts, nil
}

func (r *hostRepository) Update(ctx context.Context, host *domain.Host) error {
	if err := r.db.WithContext(ctx).Save(host).Error; err != nil {
		r.log.Errorw("host_repo_update_failed", "id", host.ID, "error", err)
		return err
	}
	return nil
}

func (r *hostRepository) UpdateStatus(ctx context.Context, id string, status domain.HostStatus) error {
	if err := r.db.WithContext(ctx).Model(&domain.Host{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		r.log.Errorw("host_repo_update_status_failed", "id", id, "status", status, "error", err)
		return err
	}
	r.log.Infow("host_repo_update_status_ok", "id", id, "status", status)
	return nil
}

func (r *hostRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Host{}).Error; err != nil {
		r.log.Errorw("host_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("host_repo_delete_ok", "id", id)
	return nil
}
