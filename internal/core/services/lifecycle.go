package services

import (
	"context"
	"errors"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// lifecycleDispatcher turns a terminally-acked command into derived state:
// node status transitions and append-only audit entries. It runs inside the
// ack transaction, so anything it writes commits together with the outcome.
//
// A command whose node has since been deleted is not an error: the ack must
// still land, so the dispatcher logs a warning and walks away.
type lifecycleDispatcher struct {
	logger *logger.Logger
}

func newLifecycleDispatcher(log *logger.Logger) *lifecycleDispatcher {
	return &lifecycleDispatcher{logger: log}
}

func (d *lifecycleDispatcher) Apply(ctx context.Context, tx ports.TxRepositories, cmd *domain.Command) error {
	if cmd.NodeID == nil || cmd.ExitCode == nil {
		return nil
	}

	node, err := tx.Nodes().GetByID(ctx, *cmd.NodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warnw("lifecycle_node_missing", "command_id", cmd.ID, "node_id", *cmd.NodeID)
			return nil
		}
		return translateStoreErr(err)
	}

	if err := d.applyNodeTransition(ctx, tx, cmd, node); err != nil {
		return err
	}
	return d.appendAuditLog(ctx, tx, cmd, node)
}

// applyNodeTransition flips the node status to reflect the reported outcome.
func (d *lifecycleDispatcher) applyNodeTransition(ctx context.Context, tx ports.TxRepositories, cmd *domain.Command, node *domain.Node) error {
	ok := *cmd.ExitCode == domain.ExitOk

	var next domain.NodeStatus
	switch {
	case cmd.Type == domain.CmdNodeCreate && ok:
		next = domain.NodeStatusOnline
	case cmd.Type == domain.CmdNodeCreate:
		next = domain.NodeStatusFailed
	case cmd.Type == domain.CmdNodeDelete && ok:
		return tx.Nodes().Delete(ctx, node.ID)
	case (cmd.Type == domain.CmdNodeStart || cmd.Type == domain.CmdNodeRestart) && ok:
		next = domain.NodeStatusOnline
	case cmd.Type == domain.CmdNodeStop && ok:
		next = domain.NodeStatusStopped
	case cmd.Type == domain.CmdNodeUpgrade && ok:
		next = domain.NodeStatusOnline
	case cmd.Type == domain.CmdNodeUpgrade:
		next = domain.NodeStatusFailed
	default:
		return nil
	}

	if node.Status == next {
		return nil
	}
	d.logger.Infow("lifecycle_node_transition", "node_id", node.ID, "from", node.Status, "to", next, "command", cmd.Type)
	return tx.Nodes().UpdateStatus(ctx, node.ID, next)
}

// appendAuditLog writes the derived node-log entry. Only NODE_CREATE
// outcomes and a confirmed NODE_DELETE produce audit entries; every other
// (kind, outcome) pair is silent.
func (d *lifecycleDispatcher) appendAuditLog(ctx context.Context, tx ports.TxRepositories, cmd *domain.Command, node *domain.Node) error {
	var event domain.NodeLogEvent
	message := ""
	switch {
	case cmd.Type == domain.CmdNodeCreate && *cmd.ExitCode == domain.ExitOk:
		event = domain.NodeLogSucceeded
	case cmd.Type == domain.CmdNodeCreate:
		event = domain.NodeLogFailed
		if cmd.ExitMessage != nil {
			message = *cmd.ExitMessage
		}
	case cmd.Type == domain.CmdNodeDelete && *cmd.ExitCode == domain.ExitOk:
		event = domain.NodeLogCanceled
	default:
		return nil
	}

	chainName := ""
	if chain, err := tx.Blockchains().GetByID(ctx, node.BlockchainID); err == nil {
		chainName = chain.Name
	} else {
		d.logger.Warnw("lifecycle_blockchain_missing", "node_id", node.ID, "blockchain_id", node.BlockchainID)
	}

	return tx.NodeLogs().Append(ctx, &domain.NodeLog{
		HostID:         cmd.HostID,
		NodeID:         node.ID,
		Event:          event,
		BlockchainName: chainName,
		NodeType:       node.NodeType,
		Version:        node.Version,
		Message:        message,
	})
}
