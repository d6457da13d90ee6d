package handlers

import (
	"strings"

	"github.com/blockwarden/backend/internal/core/services"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/blockwarden/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
)

// MqttHandler backs the broker's auth and ACL webhooks. The broker treats a
// 200 as allow and anything else as deny, so denials return 403 with no
// explanation; the reason lives in our logs only.
type MqttHandler struct {
	hostPolicy *services.HostACLPolicy
	userPolicy *services.UserACLPolicy
	logger     *logger.Logger
}

func NewMqttHandler(hostPolicy *services.HostACLPolicy, userPolicy *services.UserACLPolicy, logger *logger.Logger) *MqttHandler {
	return &MqttHandler{hostPolicy: hostPolicy, userPolicy: userPolicy, logger: logger}
}

// Auth accepts any syntactically valid connect attempt; topic-level access
// is decided by ACL. The username field carries the bearer token.
func (h *MqttHandler) Auth(c *fiber.Ctx) error {
	var req dto.MqttAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"result": "deny"})
	}
	if req.Username == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"result": "deny"})
	}
	return c.JSON(fiber.Map{"result": "allow"})
}

// ACL dispatches on the topic shape: host agents live under /hosts/, UI
// users under /nodes/. Everything else is denied outright.
func (h *MqttHandler) ACL(c *fiber.Ctx) error {
	var req dto.MqttACLRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("mqtt_acl_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"result": "deny"})
	}

	var allowed bool
	switch {
	case strings.HasPrefix(req.Topic, "/hosts/"):
		allowed = h.hostPolicy.Allow(c.Context(), req.Username, req.Topic)
	case strings.HasPrefix(req.Topic, "/nodes/"):
		allowed = h.userPolicy.Allow(c.Context(), req.Username, req.Topic)
	default:
		h.logger.Warnw("mqtt_acl_unknown_topic_shape", "topic", req.Topic)
	}

	if !allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"result": "deny"})
	}
	return c.JSON(fiber.Map{"result": "allow"})
}
