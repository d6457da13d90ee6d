package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/db"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(gdb))
	return gdb
}

// fakeClock is a hand-advanced clock so acked_at assertions are exact.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type commandEnv struct {
	db       *gorm.DB
	svc      ports.CommandService
	commands ports.CommandRepository
	nodes    ports.NodeRepository
	hosts    ports.HostRepository
	chains   ports.BlockchainRepository
	logs     ports.NodeLogRepository
	clock    *fakeClock
}

func newCommandEnv(t *testing.T) *commandEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	clock := newFakeClock()

	env := &commandEnv{
		db:       gdb,
		commands: db.NewCommandRepository(gdb, log),
		nodes:    db.NewNodeRepository(gdb, log),
		hosts:    db.NewHostRepository(gdb, log),
		chains:   db.NewBlockchainRepository(gdb, log),
		logs:     db.NewNodeLogRepository(gdb, log),
		clock:    clock,
	}
	env.svc = NewCommandService(CommandServiceConfig{
		UnitOfWork:  db.NewUnitOfWork(gdb, log),
		CommandRepo: env.commands,
		NodeRepo:    env.nodes,
		HostRepo:    env.hosts,
		Broadcast:   NewBroadcaster(),
		Logger:      log,
		Now:         clock.Now,
	})
	return env
}

func (env *commandEnv) seedHost(t *testing.T) *domain.Host {
	t.Helper()
	host := &domain.Host{Name: "host-1", OrgID: "11111111-1111-1111-1111-111111111111", Status: domain.HostStatusOnline}
	require.NoError(t, env.hosts.Create(context.Background(), host))
	return host
}

func (env *commandEnv) seedChain(t *testing.T, name string) *domain.Blockchain {
	t.Helper()
	chain := &domain.Blockchain{Name: name}
	require.NoError(t, env.chains.Create(context.Background(), chain))
	return chain
}

func (env *commandEnv) seedNode(t *testing.T, host *domain.Host, chain *domain.Blockchain) *domain.Node {
	t.Helper()
	node := &domain.Node{
		Name:         "node-1",
		HostID:       host.ID,
		BlockchainID: chain.ID,
		OrgID:        host.OrgID,
		NodeType:     domain.NodeTypeValidator,
		Version:      "1.4.0",
		Status:       domain.NodeStatusProvisioning,
	}
	require.NoError(t, env.nodes.Create(context.Background(), node))
	return node
}

func hostPrincipal(hostID string) ports.Principal {
	return ports.Principal{Kind: ports.PrincipalHost, HostID: hostID}
}
