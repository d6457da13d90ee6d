package services

import (
	"context"
	"errors"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type hostService struct {
	hosts  ports.HostRepository
	auth   ports.AuthService
	logger *logger.Logger
}

type HostServiceConfig struct {
	HostRepo ports.HostRepository
	Auth     ports.AuthService
	Logger   *logger.Logger
}

func NewHostService(cfg HostServiceConfig) ports.HostService {
	return &hostService{
		hosts:  cfg.HostRepo,
		auth:   cfg.Auth,
		logger: cfg.Logger,
	}
}

// ProvisionHost registers the host and mints the bearer token its agent will
// present on every call. The token is only returned here; it is not stored.
func (s *hostService) ProvisionHost(ctx context.Context, input ports.CreateHostInput) (*domain.Host, string, error) {
	if input.Name == "" || input.OrgID == "" {
		return nil, "", ErrHostInvalidInput
	}

	host := &domain.Host{
		Name:   input.Name,
		OrgID:  input.OrgID,
		IP:     input.IP,
		Status: domain.HostStatusPending,
	}
	if err := s.hosts.Create(ctx, host); err != nil {
		return nil, "", translateStoreErr(err)
	}

	token, err := s.auth.IssueHostToken(host.ID)
	if err != nil {
		s.logger.Errorw("host_provision_token_failed", "host_id", host.ID, "error", err)
		return nil, "", err
	}

	s.logger.Infow("host_provision_ok", "id", host.ID, "org_id", host.OrgID)
	return host, token, nil
}

func (s *hostService) GetHostByID(ctx context.Context, id string) (*domain.Host, error) {
	host, err := s.hosts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, translateStoreErr(err)
	}
	return host, nil
}

func (s *hostService) GetHostsByOrg(ctx context.Context, orgID string) ([]domain.Host, error) {
	hosts, err := s.hosts.GetByOrgID(ctx, orgID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return hosts, nil
}

func (s *hostService) UpdateHostStatus(ctx context.Context, id string, status domain.HostStatus) error {
	if err := s.hosts.UpdateStatus(ctx, id, status); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

func (s *hostService) DeleteHost(ctx context.Context, id string) error {
	if _, err := s.GetHostByID(ctx, id); err != nil {
		return err
	}
	return translateStoreErr(s.hosts.Delete(ctx, id))
}
