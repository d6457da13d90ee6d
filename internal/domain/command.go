package domain

import (
	"time"

	"gorm.io/gorm"
)

// CommandType identifies the kind of command dispatched to a host agent.
type CommandType string

const (
	CmdNodeCreate  CommandType = "NODE_CREATE"
	CmdNodeStart   CommandType = "NODE_START"
	CmdNodeStop    CommandType = "NODE_STOP"
	CmdNodeRestart CommandType = "NODE_RESTART"
	CmdNodeUpdate  CommandType = "NODE_UPDATE"
	CmdNodeUpgrade CommandType = "NODE_UPGRADE"
	CmdNodeDelete  CommandType = "NODE_DELETE"
	CmdHostRestart CommandType = "HOST_RESTART"
	CmdHostPending CommandType = "HOST_PENDING"
)

// nodeScoped lists the command kinds that target a single node. Everything
// else targets the host itself and carries no node id.
var nodeScoped = map[CommandType]bool{
	CmdNodeCreate:  true,
	CmdNodeStart:   true,
	CmdNodeStop:    true,
	CmdNodeRestart: true,
	CmdNodeUpdate:  true,
	CmdNodeUpgrade: true,
	CmdNodeDelete:  true,
}

// IsNodeScoped reports whether the kind requires a node id.
func (t CommandType) IsNodeScoped() bool {
	return nodeScoped[t]
}

// Valid reports whether the kind is a member of the closed enumeration.
func (t CommandType) Valid() bool {
	switch t {
	case CmdNodeCreate, CmdNodeStart, CmdNodeStop, CmdNodeRestart,
		CmdNodeUpdate, CmdNodeUpgrade, CmdNodeDelete,
		CmdHostRestart, CmdHostPending:
		return true
	}
	return false
}

// ExitCode is the agent-reported outcome of a command.
type ExitCode string

const (
	ExitOk                  ExitCode = "OK"
	ExitServiceBroken       ExitCode = "SERVICE_BROKEN"
	ExitServiceNotReady     ExitCode = "SERVICE_NOT_READY"
	ExitNodeUpgradeRollback ExitCode = "NODE_UPGRADE_ROLLBACK"
	ExitNodeUpgradeFailure  ExitCode = "NODE_UPGRADE_FAILURE"
	ExitBlockingJobRunning  ExitCode = "BLOCKING_JOB_RUNNING"
	ExitInternalError       ExitCode = "INTERNAL_ERROR"
)

func (e ExitCode) Valid() bool {
	switch e {
	case ExitOk, ExitServiceBroken, ExitServiceNotReady, ExitNodeUpgradeRollback,
		ExitNodeUpgradeFailure, ExitBlockingJobRunning, ExitInternalError:
		return true
	}
	return false
}

// Command is a durable instruction from the control plane to a host agent.
// A command is pending until its first terminal ack, after which the outcome
// triple and AckedAt are immutable.
type Command struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index:idx_commands_host_pending,priority:2" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	HostID  string      `gorm:"type:uuid;not null;index:idx_commands_host_pending,priority:1" json:"host_id"`
	NodeID  *string     `gorm:"type:uuid;index" json:"node_id,omitempty"`
	Type    CommandType `gorm:"size:32;not null" json:"type"`
	Payload JSONB       `gorm:"type:jsonb" json:"payload,omitempty"`

	// Outcome triple, all nil until acked.
	ExitCode         *ExitCode  `gorm:"size:32" json:"exit_code,omitempty"`
	ExitMessage      *string    `gorm:"type:text" json:"exit_message,omitempty"`
	RetryHintSeconds *uint64    `json:"retry_hint_seconds,omitempty"`
	AckedAt          *time.Time `json:"acked_at,omitempty"`
}

// Acked reports whether the command has received its terminal outcome.
func (c *Command) Acked() bool {
	return c.AckedAt != nil
}

// SameOutcome reports whether the stored outcome equals the given triple.
// Used to detect idempotent ack replays.
func (c *Command) SameOutcome(code ExitCode, message string, retryHint *uint64) bool {
	if c.ExitCode == nil || *c.ExitCode != code {
		return false
	}
	if c.ExitMessage == nil || *c.ExitMessage != message {
		return false
	}
	if (c.RetryHintSeconds == nil) != (retryHint == nil) {
		return false
	}
	if retryHint != nil && *c.RetryHintSeconds != *retryHint {
		return false
	}
	return true
}
