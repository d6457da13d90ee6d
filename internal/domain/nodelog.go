package domain

import "time"

// NodeLogEvent classifies a node lifecycle audit entry.
type NodeLogEvent string

const (
	// NodeLogCreated notes that a NODE_CREATE command was dispatched. A
	// Succeeded or Failed entry should follow.
	NodeLogCreated NodeLogEvent = "created"
	// NodeLogSucceeded notes that the agent confirmed a successful create.
	NodeLogSucceeded NodeLogEvent = "succeeded"
	// NodeLogFailed notes that the agent reported a failed create.
	NodeLogFailed NodeLogEvent = "failed"
	// NodeLogCanceled notes that the node was deleted and deployment aborted.
	NodeLogCanceled NodeLogEvent = "canceled"
)

// NodeLog is an append-only audit record of a node lifecycle event. The
// descriptive fields are denormalized on purpose so the log stays meaningful
// after the node row is deleted. Rows are never updated or deleted here.
// HostAttempts pairs a host with the number of deployment attempts made on
// it, derived from "created" entries.
type HostAttempts struct {
	HostID   string
	Attempts int
}

// HostsTried reports, per host, how many deployment attempts a node's log
// records, in first-attempt order. Callers use it to skip hosts that already
// failed when scheduling a retry. The input must be in creation order.
func HostsTried(logs []NodeLog) []HostAttempts {
	index := make(map[string]int)
	var out []HostAttempts
	for _, entry := range logs {
		if entry.Event != NodeLogCreated {
			continue
		}
		if i, ok := index[entry.HostID]; ok {
			out[i].Attempts++
			continue
		}
		index[entry.HostID] = len(out)
		out = append(out, HostAttempts{HostID: entry.HostID, Attempts: 1})
	}
	return out
}

// DeploysTriedOnLastHost counts the attempts on the host the node was most
// recently dispatched to. Zero means no deployment was ever attempted.
func DeploysTriedOnLastHost(logs []NodeLog) int {
	last := ""
	for _, entry := range logs {
		if entry.Event == NodeLogCreated {
			last = entry.HostID
		}
	}
	if last == "" {
		return 0
	}
	for _, ha := range HostsTried(logs) {
		if ha.HostID == last {
			return ha.Attempts
		}
	}
	return 0
}

type NodeLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	HostID         string       `gorm:"type:uuid;not null;index" json:"host_id"`
	NodeID         string       `gorm:"type:uuid;not null;index" json:"node_id"`
	Event          NodeLogEvent `gorm:"size:20;not null" json:"event"`
	BlockchainName string       `gorm:"size:255" json:"blockchain_name"`
	NodeType       NodeType     `gorm:"size:20" json:"node_type"`
	Version        string       `gorm:"size:64" json:"version"`
	Message        string       `gorm:"type:text" json:"message,omitempty"`
}
