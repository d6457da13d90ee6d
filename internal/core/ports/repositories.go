package ports

import (
	"context"
	"time"

	"github.com/blockwarden/backend/internal/domain"
)

type CommandRepository interface {
	// Insert assigns the id and creation timestamp and persists the draft.
	Insert(ctx context.Context, cmd *domain.Command) error
	GetByID(ctx context.Context, id string) (*domain.Command, error)
	// GetByIDForUpdate fetches the command row holding a row lock for the
	// remainder of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Command, error)
	// PendingForHost returns unacked commands for the host ordered by
	// creation time ascending, ties broken by id. A non-nil filter narrows
	// the result to a single kind.
	PendingForHost(ctx context.Context, hostID string, filter *domain.CommandType) ([]domain.Command, error)
	// UpdateOutcome writes the outcome triple and stamps acked_at, guarded
	// so only a still-pending row is written. Returns the number of rows
	// changed (0 means the row was already acked or does not exist).
	UpdateOutcome(ctx context.Context, id string, code domain.ExitCode, message *string, retryHint *uint64, ackedAt time.Time) (int64, error)
}

type NodeLogRepository interface {
	Append(ctx context.Context, entry *domain.NodeLog) error
	GetByNode(ctx context.Context, nodeID string) ([]domain.NodeLog, error)
	GetByNodeSince(ctx context.Context, nodeID string, since time.Time) ([]domain.NodeLog, error)
}

type NodeRepository interface {
	Create(ctx context.Context, node *domain.Node) error
	GetByID(ctx context.Context, id string) (*domain.Node, error)
	GetByHostID(ctx context.Context, hostID string) ([]domain.Node, error)
	GetByOrgID(ctx context.Context, orgID string) ([]domain.Node, error)
	Update(ctx context.Context, node *domain.Node) error
	UpdateStatus(ctx context.Context, id string, status domain.NodeStatus) error
	Delete(ctx context.Context, id string) error
}

type HostRepository interface {
	Create(ctx context.Context, host *domain.Host) error
	GetByID(ctx context.Context, id string) (*domain.Host, error)
	GetByOrgID(ctx context.Context, orgID string) ([]domain.Host, error)
	Update(ctx context.Context, host *domain.Host) error
	UpdateStatus(ctx context.Context, id string, status domain.HostStatus) error
	Delete(ctx context.Context, id string) error
}

type BlockchainRepository interface {
	Create(ctx context.Context, chain *domain.Blockchain) error
	GetByID(ctx context.Context, id string) (*domain.Blockchain, error)
	GetAll(ctx context.Context) ([]domain.Blockchain, error)
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TxRepositories is the transaction-scoped view over the store handed to the
// unit-of-work callback. Everything reached through it runs on one database
// transaction and commits or rolls back together.
type TxRepositories interface {
	Commands() CommandRepository
	NodeLogs() NodeLogRepository
	Nodes() NodeRepository
	Blockchains() BlockchainRepository
}

// UnitOfWork runs fn inside a single database transaction. A returned error
// rolls everything back.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(tx TxRepositories) error) error
}
