package services

import (
	"context"
	"testing"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNodeService(env *commandEnv) ports.NodeService {
	return NewNodeService(NodeServiceConfig{
		NodeRepo:       env.nodes,
		HostRepo:       env.hosts,
		BlockchainRepo: env.chains,
		NodeLogRepo:    env.logs,
		Commands:       env.svc,
		Logger:         logger.NewNop(),
	})
}

func TestCreateNodeDispatchesCreateCommand(t *testing.T) {
	env := newCommandEnv(t)
	svc := newNodeService(env)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")

	node, err := svc.CreateNode(ctx, ports.CreateNodeInput{
		Name:         "mainnet-validator-1",
		HostID:       host.ID,
		BlockchainID: chain.ID,
		OrgID:        host.OrgID,
		NodeType:     domain.NodeTypeValidator,
		Version:      "1.4.0",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusProvisioning, node.Status)

	pending, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.CmdNodeCreate, pending[0].Type)
	require.NotNil(t, pending[0].NodeID)
	assert.Equal(t, node.ID, *pending[0].NodeID)

	logs, err := svc.GetNodeLogs(ctx, node.ID, nil)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.NodeLogCreated, logs[0].Event)

	future := time.Now().Add(time.Hour)
	recent, err := svc.GetNodeLogs(ctx, node.ID, &future)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestCreateNodeValidatesReferences(t *testing.T) {
	env := newCommandEnv(t)
	svc := newNodeService(env)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")

	_, err := svc.CreateNode(ctx, ports.CreateNodeInput{
		Name: "n", HostID: host.ID, BlockchainID: chain.ID,
	})
	assert.ErrorIs(t, err, ErrNodeInvalidInput)

	_, err = svc.CreateNode(ctx, ports.CreateNodeInput{
		Name: "n", HostID: "99999999-9999-9999-9999-999999999999", BlockchainID: chain.ID, OrgID: host.OrgID,
	})
	assert.ErrorIs(t, err, ErrHostNotFound)

	_, err = svc.CreateNode(ctx, ports.CreateNodeInput{
		Name: "n", HostID: host.ID, BlockchainID: "99999999-9999-9999-9999-999999999999", OrgID: host.OrgID,
	})
	assert.ErrorIs(t, err, ErrBlockchainNotFound)
}

func TestUpgradeNodeSnapshotsTargetVersion(t *testing.T) {
	env := newCommandEnv(t)
	svc := newNodeService(env)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	cmd, err := svc.UpgradeNode(ctx, node.ID, "1.5.0")
	require.NoError(t, err)
	assert.Equal(t, domain.CmdNodeUpgrade, cmd.Type)
	assert.Equal(t, "1.5.0", cmd.Payload["target_version"])

	got, err := svc.GetNodeByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", got.Version)
	assert.Equal(t, domain.NodeStatusUpgrading, got.Status)

	_, err = svc.UpgradeNode(ctx, node.ID, "")
	assert.ErrorIs(t, err, ErrNodeInvalidInput)
}

func TestDeleteNodeDispatchesDelete(t *testing.T) {
	env := newCommandEnv(t)
	svc := newNodeService(env)
	ctx := context.Background()
	host := env.seedHost(t)
	chain := env.seedChain(t, "ethereum")
	node := env.seedNode(t, host, chain)

	require.NoError(t, svc.DeleteNode(ctx, node.ID))

	got, err := svc.GetNodeByID(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NodeStatusDeleting, got.Status)

	pending, err := env.svc.Pending(ctx, hostPrincipal(host.ID), host.ID, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.CmdNodeDelete, pending[0].Type)

	assert.ErrorIs(t, svc.DeleteNode(ctx, "99999999-9999-9999-9999-999999999999"), ErrNodeNotFound)
}
