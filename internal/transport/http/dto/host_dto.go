package dto

import (
	"time"

	"github.com/blockwarden/backend/internal/domain"
)

type CreateHostRequest struct {
	Name string `json:"name" validate:"required"`
	IP   string `json:"ip,omitempty" validate:"omitempty,ip"`
}

type UpdateHostStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending online offline"`
}

type HostResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OrgID     string    `json:"org_id"`
	Status    string    `json:"status"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProvisionHostResponse carries the one-time agent token alongside the host.
type ProvisionHostResponse struct {
	Host  HostResponse `json:"host"`
	Token string       `json:"token"`
}

func HostToResponse(host *domain.Host) HostResponse {
	return HostResponse{
		ID:        host.ID,
		Name:      host.Name,
		OrgID:     host.OrgID,
		Status:    string(host.Status),
		IP:        host.IP,
		CreatedAt: host.CreatedAt,
	}
}

func HostsToResponse(hosts []domain.Host) []HostResponse {
	out := make([]HostResponse, 0, len(hosts))
	for i := range hosts {
		out = append(out, HostToResponse(&hosts[i]))
	}
	return out
}
