package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommandNodeScoped(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{
		Type:   domain.CmdNodeCreate,
		NodeID: node.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, host.ID, cmd.HostID)
	require.NotNil(t, cmd.NodeID)
	assert.Equal(t, node.ID, *cmd.NodeID)
	assert.Nil(t, cmd.ExitCode)
	assert.Nil(t, cmd.AckedAt)

	// Payload snapshots the node fields at creation time.
	assert.Equal(t, node.Name, cmd.Payload["node_name"])
	assert.Equal(t, chain.ID, cmd.Payload["blockchain_id"])
	assert.Equal(t, "validator", cmd.Payload["node_type"])
	assert.Equal(t, "1.4.0", cmd.Payload["version"])

	// Dispatching NODE_CREATE writes a "created" audit entry.
	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.NodeLogCreated, logs[0].Event)
	assert.Equal(t, "ethereum", logs[0].BlockchainName)
}

func TestCreateCommandHostScoped(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{
		Type:   domain.CmdHostRestart,
		HostID: host.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, host.ID, cmd.HostID)
	assert.Nil(t, cmd.NodeID)
	assert.Nil(t, cmd.Payload)
}

func TestCreateCommandRejectsBadInput(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "solana")
	node := env.seedNode(t, host, chain)

	_, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: "NODE_EXPLODE", NodeID: node.ID})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeStart})
	assert.ErrorIs(t, err, ErrInvalidKindForScope)

	_, err = env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdHostRestart, HostID: host.ID, NodeID: node.ID})
	assert.ErrorIs(t, err, ErrInvalidKindForScope)

	_, err = env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeStart, NodeID: "99999999-9999-9999-9999-999999999999"})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdHostRestart, HostID: "99999999-9999-9999-9999-999999999999"})
	assert.ErrorIs(t, err, ErrHostUnreachable)
}

func TestAckSuccessfulCreate(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeCreate, NodeID: node.ID})
	require.NoError(t, err)

	acked, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)
	require.NotNil(t, acked.ExitCode)
	assert.Equal(t, domain.ExitOk, *acked.ExitCode)
	require.NotNil(t, acked.AckedAt)
	assert.Nil(t, acked.RetryHintSeconds)

	got, err := env.nodes.GetByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusOnline, got.Status)

	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.NodeLogCreated, logs[0].Event)
	assert.Equal(t, domain.NodeLogSucceeded, logs[1].Event)

	pending, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAckFailedCreateWritesFailureLog(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeCreate, NodeID: node.ID})
	require.NoError(t, err)

	acked, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID:   cmd.ID,
		ExitCode:    domain.ExitServiceBroken,
		ExitMessage: "image pull failed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExitServiceBroken, *acked.ExitCode)

	got, err := env.nodes.GetByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusFailed, got.Status)

	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.NodeLogFailed, logs[1].Event)
	assert.Equal(t, "image pull failed", logs[1].Message)
}

func TestAckFailureWithRetryHint(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeStart, NodeID: node.ID})
	require.NoError(t, err)

	hint := uint64(30)
	acked, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID:        cmd.ID,
		ExitCode:         domain.ExitBlockingJobRunning,
		ExitMessage:      "snapshot job still running",
		RetryHintSeconds: &hint,
	})
	require.NoError(t, err)
	require.NotNil(t, acked.RetryHintSeconds)
	assert.Equal(t, uint64(30), *acked.RetryHintSeconds)

	// Failed start leaves the node alone and appends no audit entry.
	got, err := env.nodes.GetByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusProvisioning, got.Status)

	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	// The hint survives a re-read and the command is out of the queue.
	stored, err := env.svc.GetByID(ctx, cmd.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RetryHintSeconds)
	assert.Equal(t, uint64(30), *stored.RetryHintSeconds)

	pending, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAckIdempotentReplay(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeCreate, NodeID: node.ID})
	require.NoError(t, err)

	first, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	replay, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)

	// The stamp from the first ack wins; the replay does not touch the row.
	assert.WithinDuration(t, *first.AckedAt, *replay.AckedAt, time.Second)

	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.NodeLogSucceeded, logs[1].Event)
}

func TestAckConflictingOutcome(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeCreate, NodeID: node.ID})
	require.NoError(t, err)

	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)

	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitInternalError,
	})
	assert.ErrorIs(t, err, ErrCommandAlreadyAcked)

	stored, err := env.svc.GetByID(ctx, cmd.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExitCode)
	assert.Equal(t, domain.ExitOk, *stored.ExitCode)
}

func TestAckWrongHostForbidden(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeCreate, NodeID: node.ID})
	require.NoError(t, err)

	_, err = env.svc.Ack(ctx, hostPrincipal("99999999-9999-9999-9999-999999999999"), ports.AckCommandInput{
		CommandID: cmd.ID,
		ExitCode:  domain.ExitOk,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := env.svc.GetByID(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AckedAt)
}

func TestAckValidation(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)

	_, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: "irrelevant",
		ExitCode:  "NOT_A_CODE",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	hint := uint64(10)
	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID:        "irrelevant",
		ExitCode:         domain.ExitOk,
		RetryHintSeconds: &hint,
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: "99999999-9999-9999-9999-999999999999",
		ExitCode:  domain.ExitOk,
	})
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestAckTruncatesExitMessage(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeStart, NodeID: node.ID})
	require.NoError(t, err)

	acked, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID:   cmd.ID,
		ExitCode:    domain.ExitServiceBroken,
		ExitMessage: "  " + strings.Repeat("x", 4000) + "  ",
	})
	require.NoError(t, err)
	require.NotNil(t, acked.ExitMessage)
	assert.Len(t, *acked.ExitMessage, 1024)
}

func TestAckConfirmedDeleteRemovesNode(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	startCmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeStart, NodeID: node.ID})
	require.NoError(t, err)
	deleteCmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: domain.CmdNodeDelete, NodeID: node.ID})
	require.NoError(t, err)

	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: deleteCmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)

	_, err = env.nodes.GetByID(ctx, node.ID)
	assert.Error(t, err)

	logs, err := env.logs.GetByNode(ctx, node.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.NodeLogCanceled, logs[0].Event)

	// Acking a command for the now-deleted node still lands; the missing
	// node only skips the side effects.
	acked, err := env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: startCmd.ID,
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)
	assert.NotNil(t, acked.AckedAt)
}

func TestPendingFIFOAndFilter(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	var ids []string
	for _, kind := range []domain.CommandType{domain.CmdNodeCreate, domain.CmdNodeStart, domain.CmdNodeStop} {
		cmd, err := env.svc.Create(ctx, ports.CreateCommandInput{Type: kind, NodeID: node.ID})
		require.NoError(t, err)
		ids = append(ids, cmd.ID)
	}

	pending, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, cmd := range pending {
		assert.Equal(t, ids[i], cmd.ID)
	}

	// Acking the middle command removes only it; the others keep their order.
	_, err = env.svc.Ack(ctx, hostPrincipal(host.ID), ports.AckCommandInput{
		CommandID: ids[1],
		ExitCode:  domain.ExitOk,
	})
	require.NoError(t, err)

	pending, err = env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[2], pending[1].ID)

	filtered, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, string(domain.CmdNodeStop))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[2], filtered[0].ID)
}

func TestPendingAccessControl(t *testing.T) {
	env := newCommandEnv(t)
	ctx := context.Background()
	host := env.seedHost(t)

	_, err := env.svc.Pending(ctx, hostPrincipal("99999999-9999-9999-9999-999999999999"), host.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Pending(ctx, ports.Principal{Kind: ports.PrincipalUser, UserID: "u1"}, host.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "NOT_A_KIND")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
