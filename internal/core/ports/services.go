package ports

import (
	"context"
	"time"

	"github.com/blockwarden/backend/internal/domain"
)

// PrincipalKind distinguishes the two credential flavors the control plane
// mints: host agent tokens and web UI user tokens.
type PrincipalKind string

const (
	PrincipalHost PrincipalKind = "host"
	PrincipalUser PrincipalKind = "user"
)

// Principal is the authenticated identity extracted from a bearer credential.
type Principal struct {
	Kind   PrincipalKind
	HostID string
	UserID string
	OrgID  string
}

type CommandService interface {
	Create(ctx context.Context, input CreateCommandInput) (*domain.Command, error)
	GetByID(ctx context.Context, id string) (*domain.Command, error)
	// Pending returns the host's unacked commands in delivery order. The
	// caller's principal must be bound to hostID. filterKind narrows by
	// kind when non-empty.
	Pending(ctx context.Context, principal Principal, hostID string, filterKind string) ([]domain.Command, error)
	// Ack applies the agent-reported outcome to the command. Replays with
	// an identical outcome succeed without effect; replays with a
	// different outcome fail.
	Ack(ctx context.Context, principal Principal, input AckCommandInput) (*domain.Command, error)
}

type CreateCommandInput struct {
	Type domain.CommandType
	// NodeID is required for node-scoped kinds and must be empty otherwise.
	NodeID string
	// HostID is required for host-scoped kinds; node-scoped kinds derive
	// the host from the node record.
	HostID string
}

type AckCommandInput struct {
	CommandID        string
	ExitCode         domain.ExitCode
	ExitMessage      string
	RetryHintSeconds *uint64
}

type NodeService interface {
	CreateNode(ctx context.Context, input CreateNodeInput) (*domain.Node, error)
	GetNodeByID(ctx context.Context, id string) (*domain.Node, error)
	GetNodesByOrg(ctx context.Context, orgID string) ([]domain.Node, error)
	DeleteNode(ctx context.Context, id string) error
	StartNode(ctx context.Context, id string) (*domain.Command, error)
	StopNode(ctx context.Context, id string) (*domain.Command, error)
	RestartNode(ctx context.Context, id string) (*domain.Command, error)
	UpgradeNode(ctx context.Context, id, targetVersion string) (*domain.Command, error)
	// GetNodeLogs returns the node's audit history oldest first. A non-nil
	// since narrows to entries after that instant.
	GetNodeLogs(ctx context.Context, id string, since *time.Time) ([]domain.NodeLog, error)
}

type CreateNodeInput struct {
	Name         string
	HostID       string
	BlockchainID string
	OrgID        string
	NodeType     domain.NodeType
	Version      string
}

type HostService interface {
	// ProvisionHost registers the host and returns it together with the
	// agent bearer token.
	ProvisionHost(ctx context.Context, input CreateHostInput) (*domain.Host, string, error)
	GetHostByID(ctx context.Context, id string) (*domain.Host, error)
	GetHostsByOrg(ctx context.Context, orgID string) ([]domain.Host, error)
	UpdateHostStatus(ctx context.Context, id string, status domain.HostStatus) error
	DeleteHost(ctx context.Context, id string) error
}

type CreateHostInput struct {
	Name  string
	OrgID string
	IP    string
}

type AuthService interface {
	// Login verifies the user's password and mints a user token carrying
	// the user and organization claims.
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, orgName string) (*domain.User, error)
	IssueHostToken(hostID string) (string, error)
	// ParseToken validates the credential and returns its principal.
	ParseToken(token string) (Principal, error)
}

// TopicACLPolicy decides whether the holder of a credential may attach to a
// message-broker topic. Denials never explain themselves to the caller.
type TopicACLPolicy interface {
	Allow(ctx context.Context, token, topic string) bool
}
