package dto

import (
	"time"

	"github.com/blockwarden/backend/internal/domain"
)

type CreateNodeRequest struct {
	Name         string `json:"name" validate:"required"`
	HostID       string `json:"host_id" validate:"required,uuid"`
	BlockchainID string `json:"blockchain_id" validate:"required,uuid"`
	NodeType     string `json:"node_type" validate:"required,oneof=validator rpc archive miner"`
	Version      string `json:"version,omitempty"`
}

type UpgradeNodeRequest struct {
	Version string `json:"version" validate:"required"`
}

type NodeResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HostID       string    `json:"host_id"`
	BlockchainID string    `json:"blockchain_id"`
	OrgID        string    `json:"org_id"`
	NodeType     string    `json:"node_type"`
	Version      string    `json:"version,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func NodeToResponse(node *domain.Node) NodeResponse {
	return NodeResponse{
		ID:           node.ID,
		Name:         node.Name,
		HostID:       node.HostID,
		BlockchainID: node.BlockchainID,
		OrgID:        node.OrgID,
		NodeType:     string(node.NodeType),
		Version:      node.Version,
		Status:       string(node.Status),
		CreatedAt:    node.CreatedAt,
	}
}

func NodesToResponse(nodes []domain.Node) []NodeResponse {
	out := make([]NodeResponse, 0, len(nodes))
	for i := range nodes {
		out = append(out, NodeToResponse(&nodes[i]))
	}
	return out
}

type NodeLogResponse struct {
	ID             string    `json:"id"`
	HostID         string    `json:"host_id"`
	NodeID         string    `json:"node_id"`
	Event          string    `json:"event"`
	BlockchainName string    `json:"blockchain_name,omitempty"`
	NodeType       string    `json:"node_type,omitempty"`
	Version        string    `json:"version,omitempty"`
	Message        string    `json:"message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NodeLogsToResponse(logs []domain.NodeLog) []NodeLogResponse {
	out := make([]NodeLogResponse, 0, len(logs))
	for _, entry := range logs {
		out = append(out, NodeLogResponse{
			ID:             entry.ID,
			HostID:         entry.HostID,
			NodeID:         entry.NodeID,
			Event:          string(entry.Event),
			BlockchainName: entry.BlockchainName,
			NodeType:       string(entry.NodeType),
			Version:        entry.Version,
			Message:        entry.Message,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return out
}
