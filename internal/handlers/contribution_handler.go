package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

type ContributionHandler struct {
	contributionService *services.ContributionService
}

func NewContributionHandler(contributionService *services.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

// Upsert creates the caller's contribution of the given type or replaces it.
func (h *ContributionHandler) Upsert(c *fiber.Ctx) error {
	newsletterID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ContributionCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contribution, err := h.contributionService.Upsert(newsletterID, middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(contribution)
}

func (h *ContributionHandler) List(c *fiber.Ctx) error {
	newsletterID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contributions, err := h.contributionService.List(newsletterID, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(contributions)
}

func (h *ContributionHandler) ListMine(c *fiber.Ctx) error {
	newsletterID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contributions, err := h.contributionService.ListMine(newsletterID, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(contributions)
}

func (h *ContributionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ContributionUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contribution, err := h.contributionService.Update(id, middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(contribution)
}

func (h *ContributionHandler) SetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ContributionStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	contribution, err := h.contributionService.SetStatus(id, middleware.Actor(c), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(contribution)
}
