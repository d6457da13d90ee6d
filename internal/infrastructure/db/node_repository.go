package db

import (
	"context"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type nodeRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepository(db *gorm.DB, log *logger.Logger) ports.NodeRepository {
	return &nodeRepository{db: db, log: log}
}

func (r *nodeRepository) Create(ctx context.Context, node *domain.Node) error {
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(node).Error; err != nil {
		r.log.Errorw("node_repo_create_failed", "name", node.Name, "host_id", node.HostID, "error", err)
		return err
	}
	r.log.Infow("node_repo_create_ok", "id", node.ID, "host_id", node.HostID)
	return nil
}

func (r *nodeRepository) GetByID(ctx context.Context, id string) (*domain.Node, error) {
	var node domain.Node
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		r.log.Errorw("node_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &node, nil
}

func (r *nodeRepository) GetByHostID(ctx context.Context, hostID string) ([]domain.Node, error) {
	var nodes []domain.Node
	if err := r.db.WithContext(ctx).Where("host_id = ?", hostID).Find(&nodes).Error; err != nil {
		r.log.Errorw("node_repo_get_by_host_failed", "host_id", hostID, "error", err)
		return nil, err
	}
	return nodes, nil
}

func (r *nodeRepository) GetByOrgID(ctx context.Context, orgID string) ([]domain.Node, error) {
	var nodes []domain.Node
	if err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Find(&nodes).Error; err != nil {
		r.log.Errorw("node_repo_get_by_org_failed", "org_id", orgID, "error", err)
		return nil, err
	}
	return nodes, nil
}

func (r *nodeRepository) Update(ctx context.Context, node *domain.Node) error {
	if err := r.db.WithContext(ctx).Save(node).Error; err != nil {
		r.log.Errorw("node_repo_update_failed", "id", node.ID, "error", err)
		return err
	}
	r.log.Infow("node_repo_update_ok", "id", node.ID)
	return nil
}

func (r *nodeRepository) UpdateStatus(ctx context.Context, id string, status domain.NodeStatus) error {
	if err := r.db.WithContext(ctx).Model(&domain.Node{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		r.log.Errorw("node_repo_update_status_failed", "id", id, "status", status, "error", err)
		return err
	}
	r.log.Infow("node_repo_update_status_ok", "id", id, "status", status)
	return nil
}

func (r *nodeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Node{}).Error; err != nil {
		r.log.Errorw("node_repo_delete_failed", "id", id, "error", err)
		return err
	}
	r.log.Infow("node_repo_delete_ok", "id", id)
	return nil
}
