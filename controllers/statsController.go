package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"rhombick-backend/database"
	"rhombick-backend/services"
	"rhombick-backend/utils"
)

type StatsController struct {
	stats *services.StatsService
	db    *gorm.DB
}

func NewStatsController(stats *services.StatsService, db *gorm.DB) *StatsController {
	return &StatsController{stats: stats, db: db}
}

func (h *StatsController) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.Get(c.UserContext())
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, stats, "")
}

// Health reports 503 when the database does not answer.
func (h *StatsController) Health(c *fiber.Ctx) error {
	if err := database.Ping(h.db); err != nil {
		return utils.RespondError(c, fiber.StatusServiceUnavailable, "database unavailable", nil)
	}
	return utils.Respond(c, fiber.StatusOK, fiber.Map{"status": "ok"}, "")
}
