package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// BindAndValidate parses the request body into dst, trims its strings and validates it.
// Returns a 400 fiber.Error for parse errors and a *models.ValidationError for validation issues.
func BindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(dst)
	return models.Validate(dst)
}
