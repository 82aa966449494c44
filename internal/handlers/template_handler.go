package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) List(c *fiber.Ctx) error {
	templates, err := h.templateService.List()
	if err != nil {
		return err
	}
	return c.JSON(templates)
}

func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	template, err := h.templateService.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(template)
}

func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var req dto.TemplateCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	template, err := h.templateService.Create(middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TemplateUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	template, err := h.templateService.Update(id, middleware.Actor(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(template)
}

func (h *TemplateHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.templateService.Delete(id, middleware.Actor(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
