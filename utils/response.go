package utils

import "github.com/gofiber/fiber/v2"

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Respond writes a successful envelope.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data, Message: message})
}

// RespondPage writes a successful envelope with pagination metadata.
func RespondPage(c *fiber.Ctx, data any, p Pagination) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Pagination: &p})
}

// RespondError writes a failed envelope.
func RespondError(c *fiber.Ctx, status int, message string, errs map[string]string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message, Errors: errs})
}
