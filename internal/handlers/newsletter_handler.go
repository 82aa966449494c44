package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

type NewsletterHandler struct {
	newsletterService *services.NewsletterService
}

func NewNewsletterHandler(newsletterService *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletterService: newsletterService}
}

// List supports the group_id, status, period and user_id query filters.
func (h *NewsletterHandler) List(c *fiber.Ctx) error {
	var filter dto.NewsletterFilter
	var err error
	if filter.GroupID, err = queryID(c, "group_id"); err != nil {
		return err
	}
	if filter.UserID, err = queryID(c, "user_id"); err != nil {
		return err
	}
	if raw := c.Query("status"); raw != "" {
		status := models.NewsletterStatus(raw)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid status")
		}
		filter.Status = &status
	}
	if period := c.Query("period"); period != "" {
		filter.Period = &period
	}

	newsletters, err := h.newsletterService.List(filter)
	if err != nil {
		return err
	}
	return c.JSON(newsletters)
}

func (h *NewsletterHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	newsletter, err := h.newsletterService.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

func (h *NewsletterHandler) Create(c *fiber.Ctx) error {
	var req dto.NewsletterCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	newsletter, err := h.newsletterService.Create(middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newsletter)
}

func (h *NewsletterHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.NewsletterUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	newsletter, err := h.newsletterService.Update(id, middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

func (h *NewsletterHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.newsletterService.Delete(id, middleware.Actor(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NewsletterHandler) Publish(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	newsletter, err := h.newsletterService.Publish(id, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

// SetLayout stores the raw JSON object body as the layout configuration.
func (h *NewsletterHandler) SetLayout(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	newsletter, err := h.newsletterService.SetLayout(id, middleware.Actor(c), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

func (h *NewsletterHandler) Render(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	newsletter, err := h.newsletterService.Render(id, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

func (h *NewsletterHandler) GenerateDraft(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	newsletter, err := h.newsletterService.GenerateDraft(c.UserContext(), id, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(newsletter)
}

func (h *NewsletterHandler) ListAdmins(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	grants, err := h.newsletterService.ListAdmins(id, middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(grants)
}

func (h *NewsletterHandler) GrantAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.NewsletterAdminGrantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	grant, err := h.newsletterService.GrantAdmin(id, middleware.Actor(c), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(grant)
}

func (h *NewsletterHandler) RevokeAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}
	if err := h.newsletterService.RevokeAdmin(id, middleware.Actor(c), userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
