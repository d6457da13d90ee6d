package services

import (
	"context"
	"errors"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type nodeService struct {
	nodes    ports.NodeRepository
	hosts    ports.HostRepository
	chains   ports.BlockchainRepository
	logs     ports.NodeLogRepository
	commands ports.CommandService
	logger   *logger.Logger
}

type NodeServiceConfig struct {
	NodeRepo       ports.NodeRepository
	HostRepo       ports.HostRepository
	BlockchainRepo ports.BlockchainRepository
	NodeLogRepo    ports.NodeLogRepository
	Commands       ports.CommandService
	Logger         *logger.Logger
}

func NewNodeService(cfg NodeServiceConfig) ports.NodeService {
	return &nodeService{
		nodes:    cfg.NodeRepo,
		hosts:    cfg.HostRepo,
		chains:   cfg.BlockchainRepo,
		logs:     cfg.NodeLogRepo,
		commands: cfg.Commands,
		logger:   cfg.Logger,
	}
}

// CreateNode persists the node record and dispatches the NODE_CREATE command
// to the owning host's agent. The node starts out provisioning and moves on
// when the agent acks the command.
func (s *nodeService) CreateNode(ctx context.Context, input ports.CreateNodeInput) (*domain.Node, error) {
	if input.Name == "" || input.HostID == "" || input.BlockchainID == "" || input.OrgID == "" {
		return nil, ErrNodeInvalidInput
	}

	if _, err := s.hosts.GetByID(ctx, input.HostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, translateStoreErr(err)
	}
	if _, err := s.chains.GetByID(ctx, input.BlockchainID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockchainNotFound
		}
		return nil, translateStoreErr(err)
	}

	node := &domain.Node{
		Name:         input.Name,
		HostID:       input.HostID,
		BlockchainID: input.BlockchainID,
		OrgID:        input.OrgID,
		NodeType:     input.NodeType,
		Version:      input.Version,
		Status:       domain.NodeStatusProvisioning,
	}
	if err := s.nodes.Create(ctx, node); err != nil {
		return nil, translateStoreErr(err)
	}

	if _, err := s.commands.Create(ctx, ports.CreateCommandInput{
		Type:   domain.CmdNodeCreate,
		NodeID: node.ID,
	}); err != nil {
		s.logger.Errorw("node_create_dispatch_failed", "node_id", node.ID, "error", err)
		return nil, err
	}

	s.logger.Infow("node_create_ok", "id", node.ID, "host_id", node.HostID)
	return node, nil
}

func (s *nodeService) GetNodeByID(ctx context.Context, id string) (*domain.Node, error) {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, translateStoreErr(err)
	}
	return node, nil
}

func (s *nodeService) GetNodesByOrg(ctx context.Context, orgID string) ([]domain.Node, error) {
	nodes, err := s.nodes.GetByOrgID(ctx, orgID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return nodes, nil
}

// DeleteNode marks the node deleting and dispatches NODE_DELETE. The row is
// removed once the agent confirms the teardown.
func (s *nodeService) DeleteNode(ctx context.Context, id string) error {
	if _, err := s.GetNodeByID(ctx, id); err != nil {
		return err
	}
	if err := s.nodes.UpdateStatus(ctx, id, domain.NodeStatusDeleting); err != nil {
		return translateStoreErr(err)
	}
	_, err := s.commands.Create(ctx, ports.CreateCommandInput{
		Type:   domain.CmdNodeDelete,
		NodeID: id,
	})
	return err
}

func (s *nodeService) StartNode(ctx context.Context, id string) (*domain.Command, error) {
	return s.dispatch(ctx, id, domain.CmdNodeStart)
}

func (s *nodeService) StopNode(ctx context.Context, id string) (*domain.Command, error) {
	return s.dispatch(ctx, id, domain.CmdNodeStop)
}

func (s *nodeService) RestartNode(ctx context.Context, id string) (*domain.Command, error) {
	return s.dispatch(ctx, id, domain.CmdNodeRestart)
}

// UpgradeNode records the target version on the node before dispatching, so
// the command payload snapshots the version being upgraded to.
func (s *nodeService) UpgradeNode(ctx context.Context, id, targetVersion string) (*domain.Command, error) {
	if targetVersion == "" {
		return nil, ErrNodeInvalidInput
	}
	node, err := s.GetNodeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	node.Version = targetVersion
	node.Status = domain.NodeStatusUpgrading
	if err := s.nodes.Update(ctx, node); err != nil {
		return nil, translateStoreErr(err)
	}
	return s.dispatch(ctx, id, domain.CmdNodeUpgrade)
}

func (s *nodeService) GetNodeLogs(ctx context.Context, id string, since *time.Time) ([]domain.NodeLog, error) {
	var (
		logs []domain.NodeLog
		err  error
	)
	if since != nil {
		logs, err = s.logs.GetByNodeSince(ctx, id, *since)
	} else {
		logs, err = s.logs.GetByNode(ctx, id)
	}
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return logs, nil
}

func (s *nodeService) dispatch(ctx context.Context, nodeID string, kind domain.CommandType) (*domain.Command, error) {
	cmd, err := s.commands.Create(ctx, ports.CreateCommandInput{
		Type:   kind,
		NodeID: nodeID,
	})
	if err != nil {
		s.logger.Errorw("node_dispatch_failed", "node_id", nodeID, "type", kind, "error", err)
		return nil, err
	}
	return cmd, nil
}
