package handlers

import (
	"errors"

	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/blockwarden/backend/internal/transport/http/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BlockchainHandler struct {
	repo   ports.BlockchainRepository
	logger *logger.Logger
}

func NewBlockchainHandler(repo ports.BlockchainRepository, logger *logger.Logger) *BlockchainHandler {
	return &BlockchainHandler{repo: repo, logger: logger}
}

type createBlockchainRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (h *BlockchainHandler) CreateBlockchain(c *fiber.Ctx) error {
	var req createBlockchainRequest
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

	chain := &domain.Blockchain{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Context(), chain); err != nil {
		h.logger.Errorw("blockchain_create_failed", "name", req.Name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.Status(fiber.StatusCreated).JSON(chain)
}

func (h *BlockchainHandler) GetBlockchains(c *fiber.Ctx) error {
	chains, err := h.repo.GetAll(c.Context())
	if err != nil {
		h.logger.Errorw("blockchain_list_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(chains)
}

func (h *BlockchainHandler) GetBlockchain(c *fiber.Ctx) error {
	chain, err := h.repo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "blockchain not found"})
		}
		h.logger.Errorw("blockchain_get_failed", "id", c.Params("id"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(chain)
}
