package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rhombick-backend/repositories"
	"rhombick-backend/utils"
)

// pathID returns the named route parameter after checking it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func listQuery(c *fiber.Ctx) repositories.ListQuery {
	return repositories.ListQuery{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Page:   c.QueryInt("page", repositories.DefaultPage),
		Limit:  c.QueryInt("limit", repositories.DefaultLimit),
	}.Normalize()
}

func pagination(q repositories.ListQuery, total int64) utils.Pagination {
	return utils.Pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: q.TotalPages(total),
	}
}

// fileName keeps ASCII letters, digits, dot, dash and underscore so the result is safe in a
// quoted Content-Disposition filename. Anything else becomes an underscore.
func fileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
