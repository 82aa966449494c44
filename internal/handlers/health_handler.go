package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	projectName string
}

func NewHealthHandler(db *gorm.DB, projectName string) *HealthHandler {
	return &HealthHandler{db: db, projectName: projectName}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if err := sqlDB.PingContext(c.UserContext()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": h.projectName + " API"})
}
