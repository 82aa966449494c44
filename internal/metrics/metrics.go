// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_http_requests_total",
		Help: "HTTP requests by method, matched route and status code.",
	}, []string{"method", "route", "status"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	RolePromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_role_promotions_total",
		Help: "Users promoted to SUPER_ADMIN from the configured allow-list.",
	})

	Renders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsletter_renders_total",
		Help: "Deterministic newsletter renders.",
	})

	DraftGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsletter_ai_drafts_total",
		Help: "AI draft generations by outcome.",
	}, []string{"outcome"})
)

// Draft generation outcomes.
const (
	DraftEmpty        = "empty"
	DraftUnconfigured = "unconfigured"
	DraftAI           = "ai"
	DraftFallback     = "fallback"
)

// Middleware counts every request once the handler chain has returned. An
// error is resolved through the app error handler first so the recorded
// status is the one sent to the client.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return nil
	}
}
