package dto

import (
	"github.com/blockwarden/backend/internal/domain"
)

type CreateCommandRequest struct {
	Type   string `json:"type" validate:"required"`
	NodeID string `json:"node_id,omitempty" validate:"omitempty,uuid"`
	HostID string `json:"host_id,omitempty" validate:"omitempty,uuid"`
}

type AckCommandRequest struct {
	ExitCode         string  `json:"exit_code" validate:"required"`
	ExitMessage      string  `json:"exit_message,omitempty"`
	RetryHintSeconds *uint64 `json:"retry_hint_seconds,omitempty"`
}

// CommandResponse is the wire shape of a command summary. CreatedAt and
// AckedAt travel as Unix epoch milliseconds.
type CommandResponse struct {
	ID               string       `json:"id"`
	HostID           string       `json:"host_id"`
	NodeID           *string      `json:"node_id,omitempty"`
	Type             string       `json:"type"`
	Payload          domain.JSONB `json:"payload,omitempty"`
	CreatedAt        int64        `json:"created_at"`
	AckedAt          *int64       `json:"acked_at,omitempty"`
	ExitCode         *string      `json:"exit_code,omitempty"`
	ExitMessage      *string      `json:"exit_message,omitempty"`
	RetryHintSeconds *uint64      `json:"retry_hint_seconds,omitempty"`
}

func CommandToResponse(cmd *domain.Command) CommandResponse {
	resp := CommandResponse{
		ID:               cmd.ID,
		HostID:           cmd.HostID,
		NodeID:           cmd.NodeID,
		Type:             string(cmd.Type),
		Payload:          cmd.Payload,
		CreatedAt:        cmd.CreatedAt.UnixMilli(),
		ExitMessage:      cmd.ExitMessage,
		RetryHintSeconds: cmd.RetryHintSeconds,
	}
	if cmd.AckedAt != nil {
		ms := cmd.AckedAt.UnixMilli()
		resp.AckedAt = &ms
	}
	if cmd.ExitCode != nil {
		code := string(*cmd.ExitCode)
		resp.ExitCode = &code
	}
	return resp
}

func CommandsToResponse(cmds []domain.Command) []CommandResponse {
	out := make([]CommandResponse, 0, len(cmds))
	for i := range cmds {
		out = append(out, CommandToResponse(&cmds[i]))
	}
	return out
}
