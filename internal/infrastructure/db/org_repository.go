package db

import (
	"context"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orgRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepository(db *gorm.DB, log *logger.Logger) ports.OrganizationRepository {
	return &orgRepository{db: db, log: log}
}

func (r *orgRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		r.log.Errorw("org_repo_create_failed", "name", org.Name, "error", err)
		return err
	}
	return nil
}

func (r *orgRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		r.log.Errorw("org_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &org, nil
}
