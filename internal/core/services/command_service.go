package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// exitMessageLimit bounds agent-reported exit messages. Overflow is
// truncated silently.
const exitMessageLimit = 1024

type commandService struct {
	uow       ports.UnitOfWork
	commands  ports.CommandRepository
	nodes     ports.NodeRepository
	hosts     ports.HostRepository
	lifecycle *lifecycleDispatcher
	broadcast *Broadcaster
	logger    *logger.Logger
	now       func() time.Time
}

type CommandServiceConfig struct {
	UnitOfWork  ports.UnitOfWork
	CommandRepo ports.CommandRepository
	NodeRepo    ports.NodeRepository
	HostRepo    ports.HostRepository
	Broadcast   *Broadcaster
	Logger      *logger.Logger
	// Now overrides the server clock. Nil means time.Now.
	Now func() time.Time
}

func NewCommandService(cfg CommandServiceConfig) ports.CommandService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &commandService{
		uow:       cfg.UnitOfWork,
		commands:  cfg.CommandRepo,
		nodes:     cfg.NodeRepo,
		hosts:     cfg.HostRepo,
		lifecycle: newLifecycleDispatcher(cfg.Logger),
		broadcast: cfg.Broadcast,
		logger:    cfg.Logger,
		now:       now,
	}
}

// Create builds a command draft from the (node|host, kind) pair and persists
// it. Node-scoped kinds resolve the host from the node record; host-scoped
// kinds take the host id directly. For NODE_CREATE a "created" audit entry is
// written in the same transaction as the command row.
func (s *commandService) Create(ctx context.Context, input ports.CreateCommandInput) (*domain.Command, error) {
	if !input.Type.Valid() {
		return nil, ErrInvalidPayload
	}

	var cmd *domain.Command
	err := s.uow.InTx(ctx, func(tx ports.TxRepositories) error {
		draft, node, err := s.buildDraft(ctx, tx, input)
		if err != nil {
			return err
		}
		if err := tx.Commands().Insert(ctx, draft); err != nil {
			return translateStoreErr(err)
		}
		if draft.Type == domain.CmdNodeCreate {
			if err := s.appendDispatchLog(ctx, tx, draft, node); err != nil {
				return err
			}
		}
		cmd = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("command_create_ok", "id", cmd.ID, "host_id", cmd.HostID, "type", cmd.Type)
	if s.broadcast != nil {
		s.broadcast.Publish(Event{Kind: EventCommandCreated, Command: cmd})
	}
	return cmd, nil
}

func (s *commandService) buildDraft(ctx context.Context, tx ports.TxRepositories, input ports.CreateCommandInput) (*domain.Command, *domain.Node, error) {
	if !input.Type.IsNodeScoped() {
		if input.NodeID != "" {
			return nil, nil, ErrInvalidKindForScope
		}
		if input.HostID == "" {
			return nil, nil, ErrInvalidKindForScope
		}
		if _, err := s.hosts.GetByID(ctx, input.HostID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrHostUnreachable
			}
			return nil, nil, translateStoreErr(err)
		}
		return &domain.Command{
			HostID: input.HostID,
			Type:   input.Type,
		}, nil, nil
	}

	if input.NodeID == "" {
		return nil, nil, ErrInvalidKindForScope
	}
	node, err := tx.Nodes().GetByID(ctx, input.NodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNodeNotFound
		}
		return nil, nil, translateStoreErr(err)
	}
	if node.HostID == "" {
		return nil, nil, ErrHostUnreachable
	}

	nodeID := node.ID
	draft := &domain.Command{
		HostID:  node.HostID,
		NodeID:  &nodeID,
		Type:    input.Type,
		Payload: commandPayload(input.Type, node),
	}
	return draft, node, nil
}

// commandPayload snapshots the kind-specific fields at creation time. The
// upgrade target is the version on the node record now, not at ack time.
func commandPayload(kind domain.CommandType, node *domain.Node) domain.JSONB {
	switch kind {
	case domain.CmdNodeCreate:
		return domain.JSONB{
			"node_name":     node.Name,
			"blockchain_id": node.BlockchainID,
			"node_type":     string(node.NodeType),
			"version":       node.Version,
		}
	case domain.CmdNodeUpgrade:
		return domain.JSONB{
			"target_version": node.Version,
		}
	default:
		return nil
	}
}

func (s *commandService) appendDispatchLog(ctx context.Context, tx ports.TxRepositories, cmd *domain.Command, node *domain.Node) error {
	chainName := ""
	if chain, err := tx.Blockchains().GetByID(ctx, node.BlockchainID); err == nil {
		chainName = chain.Name
	}
	return tx.NodeLogs().Append(ctx, &domain.NodeLog{
		HostID:         cmd.HostID,
		NodeID:         node.ID,
		Event:          domain.NodeLogCreated,
		BlockchainName: chainName,
		NodeType:       node.NodeType,
		Version:        node.Version,
	})
}

func (s *commandService) GetByID(ctx context.Context, id string) (*domain.Command, error) {
	cmd, err := s.commands.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommandNotFound
		}
		return nil, translateStoreErr(err)
	}
	return cmd, nil
}

// Pending is the agent-facing queue read. Commands stay visible until acked;
// re-fetching after a crash returns the same ordered sequence.
func (s *commandService) Pending(ctx context.Context, principal ports.Principal, hostID string, filterKind string) ([]domain.Command, error) {
	if principal.Kind != ports.PrincipalHost || principal.HostID != hostID {
		s.logger.Warnw("command_pending_forbidden", "host_id", hostID, "principal_host", principal.HostID)
		return nil, ErrForbidden
	}

	var filter *domain.CommandType
	if filterKind != "" {
		kind := domain.CommandType(filterKind)
		if !kind.Valid() {
			return nil, ErrInvalidPayload
		}
		filter = &kind
	}

	cmds, err := s.commands.PendingForHost(ctx, hostID, filter)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.logger.Infow("command_pending_ok", "host_id", hostID, "count", len(cmds))
	return cmds, nil
}

// Ack reconciles an agent-reported outcome into the command row. The whole
// procedure runs in one transaction: the outcome write, the node status
// transition, and any derived audit entries commit together or not at all.
// A replay with the identical outcome is a no-op; a replay with a different
// outcome fails without touching the row.
func (s *commandService) Ack(ctx context.Context, principal ports.Principal, input ports.AckCommandInput) (*domain.Command, error) {
	if !input.ExitCode.Valid() {
		return nil, ErrInvalidPayload
	}
	message := strings.TrimSpace(input.ExitMessage)
	if len(message) > exitMessageLimit {
		message = message[:exitMessageLimit]
	}
	retryHint := input.RetryHintSeconds
	if input.ExitCode == domain.ExitOk && retryHint != nil {
		return nil, ErrInvalidPayload
	}

	var acked *domain.Command
	var replayed bool
	err := s.uow.InTx(ctx, func(tx ports.TxRepositories) error {
		cmd, err := tx.Commands().GetByIDForUpdate(ctx, input.CommandID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommandNotFound
			}
			return translateStoreErr(err)
		}

		// The host binding is re-checked here even though routing already
		// filtered, to guard against command ids spoofed in the payload.
		if principal.Kind != ports.PrincipalHost || principal.HostID != cmd.HostID {
			s.logger.Warnw("command_ack_forbidden", "id", cmd.ID, "host_id", cmd.HostID, "principal_host", principal.HostID)
			return ErrForbidden
		}

		if cmd.Acked() {
			if cmd.SameOutcome(input.ExitCode, message, retryHint) {
				acked, replayed = cmd, true
				return nil
			}
			return ErrCommandAlreadyAcked
		}

		ackedAt := s.now().UTC()
		rows, err := tx.Commands().UpdateOutcome(ctx, cmd.ID, input.ExitCode, &message, retryHint, ackedAt)
		if err != nil {
			return translateStoreErr(err)
		}
		if rows == 0 {
			// Lost a concurrent ack race: the row lock above should have
			// serialized us, but on stores without row locks we re-read and
			// classify the winner's outcome.
			current, err := tx.Commands().GetByID(ctx, cmd.ID)
			if err != nil {
				return translateStoreErr(err)
			}
			if current.SameOutcome(input.ExitCode, message, retryHint) {
				acked, replayed = current, true
				return nil
			}
			return ErrCommandAlreadyAcked
		}

		cmd.ExitCode = &input.ExitCode
		cmd.ExitMessage = &message
		cmd.RetryHintSeconds = retryHint
		cmd.AckedAt = &ackedAt
		if err := s.lifecycle.Apply(ctx, tx, cmd); err != nil {
			return err
		}
		acked = cmd
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		s.logger.Infow("command_ack_replayed", "id", acked.ID)
		return acked, nil
	}

	s.logger.Infow("command_ack_ok", "id", acked.ID, "exit_code", *acked.ExitCode)
	if s.broadcast != nil {
		s.broadcast.Publish(Event{Kind: EventCommandAcked, Command: acked})
	}
	return acked, nil
}

// translateStoreErr folds connectivity-level failures into the retryable
// store sentinel and passes the rest through untouched.
func translateStoreErr(err error) error {
	if errors.Is(err, gorm.ErrInvalidDB) || errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreUnavailable
	}
	return err
}
