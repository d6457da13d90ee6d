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

type CommandHandler struct {
	service ports.CommandService
	logger  *logger.Logger
}

func NewCommandHandler(service ports.CommandService, logger *logger.Logger) *CommandHandler {
	return &CommandHandler{service: service, logger: logger}
}

// CreateCommand enqueues a command for a node or host. UI-facing.
func (h *CommandHandler) CreateCommand(c *fiber.Ctx) error {
	var req dto.CreateCommandRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("command_create_body_parse_failed", "error", err)
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

	cmd, err := h.service.Create(c.Context(), ports.CreateCommandInput{
		Type:   domain.CommandType(req.Type),
		NodeID: req.NodeID,
		HostID: req.HostID,
	})
	if err != nil {
		return h.commandError(c, "command_create_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CommandToResponse(cmd))
}

// GetCommand returns a single command by id.
func (h *CommandHandler) GetCommand(c *fiber.Ctx) error {
	cmd, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.commandError(c, "command_get_failed", err)
	}
	return c.JSON(dto.CommandToResponse(cmd))
}

// PendingCommands is the agent poll endpoint: every unacked command for the
// authenticated host, oldest first. An optional ?type= query narrows by kind.
func (h *CommandHandler) PendingCommands(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	hostID := c.Params("host_id")
	cmds, err := h.service.Pending(c.Context(), principal, hostID, c.Query("type"))
	if err != nil {
		return h.commandError(c, "command_pending_failed", err)
	}

	return c.JSON(fiber.Map{"commands": dto.CommandsToResponse(cmds)})
}

// AckCommand receives the agent's terminal outcome report for a command.
func (h *CommandHandler) AckCommand(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.AckCommandRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("command_ack_body_parse_failed", "error", err)
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

	cmd, err := h.service.Ack(c.Context(), principal, ports.AckCommandInput{
		CommandID:        c.Params("id"),
		ExitCode:         domain.ExitCode(req.ExitCode),
		ExitMessage:      req.ExitMessage,
		RetryHintSeconds: req.RetryHintSeconds,
	})
	if err != nil {
		return h.commandError(c, "command_ack_failed", err)
	}

	return c.JSON(dto.CommandToResponse(cmd))
}

func (h *CommandHandler) commandError(c *fiber.Ctx, event string, err error) error {
	switch {
	case errors.Is(err, services.ErrCommandNotFound) || errors.Is(err, services.ErrNodeNotFound):
		h.logger.Warnw(event, "status", "not_found", "error", err)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		h.logger.Warnw(event, "status", "forbidden")
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, services.ErrCommandAlreadyAcked):
		h.logger.Warnw(event, "status", "conflict", "error", err)
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidPayload) || errors.Is(err, services.ErrInvalidKindForScope) || errors.Is(err, services.ErrHostUnreachable):
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
