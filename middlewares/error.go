package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rhombick-backend/logger"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// ErrorHandler maps the error taxonomy onto HTTP statuses and keeps messages sanitized.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// 1) Fiber errors (use their status code + message)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.RespondError(c, fe.Code, fe.Message, nil)
		}

		// 2) Validation errors (422 + per-field info)
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return utils.RespondError(c, fiber.StatusUnprocessableEntity, "validation failed", verr.Fields)
		}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return utils.RespondError(c, fiber.StatusUnprocessableEntity, "validation failed", models.FromValidatorErrors(ve).Fields)
		}

		// 3) Domain errors
		reqLog := logger.FromContext(c.UserContext(), log)
		switch {
		case errors.Is(err, models.ErrNotFound):
			return utils.RespondError(c, fiber.StatusNotFound, err.Error(), nil)
		case errors.Is(err, models.ErrConflict):
			return utils.RespondError(c, fiber.StatusConflict, err.Error(), nil)
		case errors.Is(err, models.ErrPreconditionFailed):
			reqLog.Error("integrity fault", zap.Error(err), zap.String("path", c.Path()))
			return utils.RespondError(c, fiber.StatusInternalServerError, "invoice could not be recomputed", nil)
		case errors.Is(err, models.ErrStorageUnavailable):
			reqLog.Error("storage unavailable", zap.Error(err), zap.String("path", c.Path()))
			return utils.RespondError(c, fiber.StatusServiceUnavailable, "storage unavailable", nil)
		}

		// 4) Unknown errors (500)
		reqLog.Error("internal error", zap.Error(err), zap.String("path", c.Path()))
		return utils.RespondError(c, fiber.StatusInternalServerError, "internal server error", nil)
	}
}
