package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mediaapi/internal/http/middleware"
	"mediaapi/internal/service"
)

const internalMessage = "internal server error"

// errorPayload is the JSON body of every error response.
type errorPayload struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Tried     []string `json:"tried,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeError writes a standardized JSON error response. message must be safe
// to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

// respondError translates a service error into an HTTP response. Client
// mistakes are logged at debug level; everything else is logged in full and
// answered with a generic message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		ve  *service.ValidationError
		nsk *service.NoSuchKeyError
		ce  *service.ConfigurationError
	)
	rid := middleware.GetRequestID(c)

	switch {
	case errors.As(err, &ve):
		log.Debug("validation failed", zap.String("request_id", rid), zap.String("reason", ve.Message))
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Message)

	case errors.As(err, &nsk):
		log.Debug("key not found", zap.String("request_id", rid), zap.String("key", nsk.Key), zap.Strings("tried", nsk.Tried))
		return c.Status(fiber.StatusNotFound).JSON(errorPayload{
			Error:     "NoSuchKey",
			Message:   service.NoSuchKeyMessage,
			Tried:     nsk.Tried,
			RequestID: rid,
		})

	case errors.As(err, &ce):
		log.Error("service not configured", zap.String("request_id", rid), zap.Error(err))

	default:
		log.Error("request failed", zap.String("request_id", rid), zap.String("path", c.Path()), zap.Error(err))
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", internalMessage)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return respondError(c, log, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		}
		if fe.Code < fiber.StatusInternalServerError {
			return writeError(c, fe.Code, "REQUEST_ERROR", fe.Message)
		}
		log.Error("request failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		return writeError(c, fe.Code, "INTERNAL_ERROR", internalMessage)
	}
}
