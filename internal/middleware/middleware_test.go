package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/database/dbtest"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/handlers"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type harness struct {
	app  *fiber.App
	db   *gorm.DB
	auth *services.AuthService
}

func newHarness(t *testing.T, superAdminEmails ...string) *harness {
	t.Helper()
	cfg := &config.Config{
		Environment:              "local",
		SecretKey:                "middleware-secret",
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 5,
		CORSOrigins:              "*",
	}
	db := dbtest.New(t)
	perms := services.NewPermissions(db, superAdminEmails)
	auth := services.NewAuthService(db, cfg, perms)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(middleware.CORS(cfg), middleware.SecurityHeaders())
	protected := app.Group("", middleware.JWTProtected(cfg), middleware.CurrentUser(auth))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"email": middleware.Actor(c).Email, "user_id": c.Locals("user_id")})
	})
	protected.Get("/admin", middleware.AdminRequired(perms), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	protected.Get("/super", middleware.SuperAdminRequired(perms), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	return &harness{app: app, db: db, auth: auth}
}

func (h *harness) user(t *testing.T, email string, role models.GlobalRole) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("irrelevant-password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, Trigram: email[:3], Name: email, PasswordHash: string(hash), GlobalRole: role, IsActive: true}
	require.NoError(t, h.db.Create(u).Error)
	token, err := h.auth.IssueToken(u)
	require.NoError(t, err)
	return u, token
}

func (h *harness) get(t *testing.T, path, token string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req)
	require.NoError(t, err)

	var body dto.ErrorResponse
	if resp.StatusCode >= 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestJWTProtected(t *testing.T) {
	h := newHarness(t)
	u, token := h.user(t, "usr@corp.test", models.RoleUser)

	t.Run("missing token", func(t *testing.T) {
		resp, body := h.get(t, "/whoami", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Could not validate credentials", body.Message)
	})

	t.Run("forged token", func(t *testing.T) {
		resp, _ := h.get(t, "/whoami", token+"x")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		resp, _ := h.get(t, "/whoami", token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var out struct {
			Email  string `json:"email"`
			UserID uint   `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, u.Email, out.Email)
		assert.Equal(t, u.ID, out.UserID)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})
}

func TestCurrentUser_RejectsUnknownAndInactive(t *testing.T) {
	h := newHarness(t)
	gone, goneToken := h.user(t, "gon@corp.test", models.RoleUser)
	require.NoError(t, h.db.Delete(gone).Error)

	resp, _ := h.get(t, "/whoami", goneToken)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	idle, idleToken := h.user(t, "idl@corp.test", models.RoleUser)
	require.NoError(t, h.db.Model(idle).Update("is_active", false).Error)

	resp, body := h.get(t, "/whoami", idleToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "inactive user", body.Message)
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t, "boss@corp.test")
	_, userToken := h.user(t, "usr@corp.test", models.RoleUser)
	_, adminToken := h.user(t, "adm@corp.test", models.RoleAdmin)
	_, superToken := h.user(t, "sup@corp.test", models.RoleSuperAdmin)
	_, listedToken := h.user(t, "boss@corp.test", models.RoleUser)

	cases := []struct {
		name      string
		token     string
		admin     int
		superOnly int
	}{
		{"user", userToken, fiber.StatusForbidden, fiber.StatusForbidden},
		{"admin", adminToken, fiber.StatusNoContent, fiber.StatusForbidden},
		{"super admin", superToken, fiber.StatusNoContent, fiber.StatusNoContent},
		{"allow-listed", listedToken, fiber.StatusNoContent, fiber.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := h.get(t, "/admin", tc.token)
			assert.Equal(t, tc.admin, resp.StatusCode)
			resp, _ = h.get(t, "/super", tc.token)
			assert.Equal(t, tc.superOnly, resp.StatusCode)
		})
	}
}
