package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/newsroom-tools/newsletter-backend/internal/dto"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

var validate = validator.New()

var categories = []struct {
	err    error
	status int
}{
	{services.ErrUnauthenticated, fiber.StatusUnauthorized},
	{services.ErrPermissionDenied, fiber.StatusForbidden},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrConflict, fiber.StatusConflict},
	{services.ErrInvalidInput, fiber.StatusBadRequest},
}

// ErrorHandler is the application error handler. Service errors map to a
// status by category; anything unexpected becomes an opaque 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := classify(err)

	if status >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func classify(err error) (int, string) {
	for _, cat := range categories {
		if errors.Is(err, cat.err) {
			return cat.status, strings.TrimSuffix(err.Error(), ": "+cat.err.Error())
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, err.Error()
}

// bind parses the request body into req and validates it. Both failures
// are reported as 422.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, validationMessage(verrs))
		}
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters", field, err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", field, err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of [%s]", field, err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", field))
		}
	}
	return strings.Join(msgs, ", ")
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid "+name)
	}
	return uint(id), nil
}

func queryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid "+name)
	}
	v := uint(id)
	return &v, nil
}
