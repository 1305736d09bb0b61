package utils

import (
	"errors"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/gofiber/fiber/v2"
)

func ResponseError(ctx *fiber.Ctx, status int, msg string, errs ...string) error {
	if errs == nil {
		errs = []string{}
	}
	return ctx.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"message":    msg,
		"success":    false,
		"errors":     errs,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}, msg string) error {
	if msg == "" {
		msg = "Success"
	}
	return ctx.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"data":       data,
		"message":    msg,
		"success":    status < fiber.StatusBadRequest,
	})
}

// StatusForKind maps a service failure kind to its HTTP status.
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidArgument, domain.KindUploadFailed:
		return fiber.StatusBadRequest
	case domain.KindUnauthorized, domain.KindInvalidToken, domain.KindTokenMismatch:
		return fiber.StatusUnauthorized
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ResponseFromError renders any service error in the error envelope.
func ResponseFromError(ctx *fiber.Ctx, err error) error {
	var e *domain.Error
	if !errors.As(err, &e) {
		return ResponseError(ctx, fiber.StatusInternalServerError, "Internal server error")
	}
	return ResponseError(ctx, StatusForKind(e.Kind), e.Message, e.Details...)
}
