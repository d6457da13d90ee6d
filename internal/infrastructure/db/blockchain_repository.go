package db

import (
	"context"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type blockchainRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockchainRepository(db *gorm.DB, log *logger.Logger) ports.BlockchainRepository {
	return &blockchainRepository{db: db, log: log}
}

func (r *blockchainRepository) Create(ctx context.Context, chain *domain.Blockchain) error {
	if chain.ID == "" {
		chain.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(chain).Error; err != nil {
		r.log.Errorw("blockchain_repo_create_failed", "name", chain.Name, "error", err)
		return err
	}
	return nil
}

func (r *blockchainRepository) GetByID(ctx context.Context, id string) (*domain.Blockchain, error) {
	var chain domain.Blockchain
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&chain).Error; err != nil {
		r.log.Errorw("blockchain_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &chain, nil
}

func (r *blockchainRepository) GetAll(ctx context.Context) ([]domain.Blockchain, error) {
	var chains []domain.Blockchain
	if err := r.db.WithContext(ctx).Order("name asc").Find(&chains).Error; err != nil {
		r.log.Errorw("blockchain_repo_list_failed", "error", err)
		return nil, err
	}
	return chains, nil
}
