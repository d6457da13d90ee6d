package handlers

import (
	"errors"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/core/services"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/blockwarden/backend/internal/transport/http/dto"
	"github.com/blockwarden/backend/internal/transport/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type HostHandler struct {
	service ports.HostService
	logger  *logger.Logger
}

func NewHostHandler(service ports.HostService, logger *logger.Logger) *HostHandler {
	return &HostHandler{service: service, logger: logger}
}

func (h *HostHandler) ProvisionHost(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.CreateHostRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("host_provision_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if details := dto.Validate(&req); len(details) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	host, token, err := h.service.ProvisionHost(c.Context(), ports.CreateHostInput{
		Name:  req.Name,
		OrgID: principal.OrgID,
		IP:    req.IP,
	})
	if err != nil {
		return h.hostError(c, "host_provision_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ProvisionHostResponse{
		Host:  dto.HostToResponse(host),
		Token: token,
	})
}

func (h *HostHandler) GetHosts(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	hosts, err := h.service.GetHostsByOrg(c.Context(), principal.OrgID)
	if err != nil {
		return h.hostError(c, "hosts_list_failed", err)
	}
	return c.JSON(dto.HostsToResponse(hosts))
}

func (h *HostHandler) GetHost(c *fiber.Ctx) error {
	host, err := h.service.GetHostByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.hostError(c, "host_get_failed", err)
	}
	return c.JSON(dto.HostToResponse(host))
}

// UpdateHostStatus lets an agent report its own availability. The path host
// id must match the host bound to the agent's token.
func (h *HostHandler) UpdateHostStatus(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}
	hostID := c.Params("host_id")
	if principal.HostID != hostID {
		h.logger.Warnw("host_status_forbidden", "host_id", hostID, "principal_host", principal.HostID)
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "forbidden"})
	}

	var req dto.UpdateHostStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if details := dto.Validate(&req); len(details) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	if err := h.service.UpdateHostStatus(c.Context(), hostID, domain.HostStatus(req.Status)); err != nil {
		return h.hostError(c, "host_status_update_failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HostHandler) DeleteHost(c *fiber.Ctx) error {
	if err := h.service.DeleteHost(c.Context(), c.Params("id")); err != nil {
		return h.hostError(c, "host_delete_failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HostHandler) hostError(c *fiber.Ctx, event string, err error) error {
	switch {
	case errors.Is(err, services.ErrHostNotFound):
		h.logger.Warnw(event, "status", "not_found", "error", err)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrHostInvalidInput):
		h.logger.Warnw(event, "status", "bad_request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		h.logger.Errorw(event, "status", "unavailable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "store unavailable"})
	default:
		h.logger.Errorw(event, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
