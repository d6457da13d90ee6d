package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/core/services"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/blockwarden/backend/internal/transport/http/dto"
	"github.com/blockwarden/backend/internal/transport/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type NodeHandler struct {
	service ports.NodeService
	logger  *logger.Logger
}

func NewNodeHandler(service ports.NodeService, logger *logger.Logger) *NodeHandler {
	return &NodeHandler{service: service, logger: logger}
}

func (h *NodeHandler) CreateNode(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.CreateNodeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("node_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if details := dto.Validate(&req); len(details) > 0 {
		h.logger.Warnw("node_create_validation_failed", "details", details)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
	}

	node, err := h.service.CreateNode(c.Context(), ports.CreateNodeInput{
		Name:         req.Name,
		HostID:       req.HostID,
		BlockchainID: req.BlockchainID,
		OrgID:        principal.OrgID,
		NodeType:     domain.NodeType(req.NodeType),
		Version:      req.Version,
	})
	if err != nil {
		return h.nodeError(c, "node_create_failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NodeToResponse(node))
}

func (h *NodeHandler) GetNodes(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unauthorized"})
	}

	nodes, err := h.service.GetNodesByOrg(c.Context(), principal.OrgID)
	if err != nil {
		return h.nodeError(c, "nodes_list_failed", err)
	}
	return c.JSON(dto.NodesToResponse(nodes))
}

func (h *NodeHandler) GetNode(c *fiber.Ctx) error {
	node, err := h.service.GetNodeByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.nodeError(c, "node_get_failed", err)
	}
	return c.JSON(dto.NodeToResponse(node))
}

func (h *NodeHandler) DeleteNode(c *fiber.Ctx) error {
	if err := h.service.DeleteNode(c.Context(), c.Params("id")); err != nil {
		return h.nodeError(c, "node_delete_failed", err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *NodeHandler) StartNode(c *fiber.Ctx) error {
	cmd, err := h.service.StartNode(c.Context(), c.Params("id"))
	if err != nil {
		return h.nodeError(c, "node_start_failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandToResponse(cmd))
}

func (h *NodeHandler) StopNode(c *fiber.Ctx) error {
	cmd, err := h.service.StopNode(c.Context(), c.Params("id"))
	if err != nil {
		return h.nodeError(c, "node_stop_failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandToResponse(cmd))
}

func (h *NodeHandler) RestartNode(c *fiber.Ctx) error {
	cmd, err := h.service.RestartNode(c.Context(), c.Params("id"))
	if err != nil {
		return h.nodeError(c, "node_restart_failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandToResponse(cmd))
}

func (h *NodeHandler) UpgradeNode(c *fiber.Ctx) error {
	var req dto.UpgradeNodeRequest
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

	cmd, err := h.service.UpgradeNode(c.Context(), c.Params("id"), req.Version)
	if err != nil {
		return h.nodeError(c, "node_upgrade_failed", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.CommandToResponse(cmd))
}

// GetNodeLogs returns the node's audit history. An optional ?since= query
// (unix milliseconds) narrows to entries after that instant.
func (h *NodeHandler) GetNodeLogs(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid since parameter"})
		}
		ts := time.UnixMilli(millis)
		since = &ts
	}

	logs, err := h.service.GetNodeLogs(c.Context(), c.Params("id"), since)
	if err != nil {
		return h.nodeError(c, "node_logs_failed", err)
	}
	return c.JSON(dto.NodeLogsToResponse(logs))
}

func (h *NodeHandler) nodeError(c *fiber.Ctx, event string, err error) error {
	switch {
	case errors.Is(err, services.ErrNodeNotFound) || errors.Is(err, services.ErrHostNotFound) || errors.Is(err, services.ErrBlockchainNotFound):
		h.logger.Warnw(event, "status", "not_found", "error", err)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNodeInvalidInput) || errors.Is(err, services.ErrHostUnreachable):
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
