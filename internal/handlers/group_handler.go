package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) List(c *fiber.Ctx) error {
	groups, err := h.groupService.List()
	if err != nil {
		return err
	}
	return c.JSON(groups)
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	group, err := h.groupService.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(group)
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var req dto.GroupCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	group, err := h.groupService.Create(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.GroupUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	group, err := h.groupService.Update(id, &req)
	if err != nil {
		return err
	}
	return c.JSON(group)
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.groupService.Delete(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.GroupMemberAddRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	group, err := h.groupService.AddMember(id, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	userID, err := paramID(c, "user_id")
	if err != nil {
		return err
	}
	if err := h.groupService.RemoveMember(id, userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
