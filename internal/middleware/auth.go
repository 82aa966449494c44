package middleware

import (
	"strconv"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

const actorKey = "actor"

// JWTProtected verifies the bearer token and stores it under Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: cfg.Algorithm, Key: []byte(cfg.SecretKey)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Could not validate credentials",
			})
		},
	})
}

// CurrentUser resolves the verified token's subject to an active user and
// makes it available through Actor. Must run after JWTProtected.
func CurrentUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return services.ErrInvalidToken
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return services.ErrInvalidToken
		}
		userID, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return services.ErrInvalidToken
		}

		actor, err := authService.ResolveActor(uint(userID))
		if err != nil {
			return err
		}

		c.Locals(actorKey, actor)
		c.Locals("user_id", actor.ID)
		return c.Next()
	}
}

// Actor returns the user resolved by CurrentUser, or nil on public routes.
func Actor(c *fiber.Ctx) *models.User {
	actor, _ := c.Locals(actorKey).(*models.User)
	return actor
}
