package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"rhombick-backend/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery carries the paging, search and sort parameters of a list request.
type ListQuery struct {
	Search string
	Sort   string // JSON field name, "-" prefix for descending
	Page   int
	Limit  int
}

// Normalize applies the paging defaults and caps the page size.
func (q ListQuery) Normalize() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TotalPages returns ceil(total / limit).
func (q ListQuery) TotalPages(total int64) int {
	if q.Limit < 1 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}

// orderClause maps a client sort expression onto a whitelisted column.
func orderClause(sort string, columns map[string]string) (string, error) {
	if sort == "" {
		return "created_at ASC, id ASC", nil
	}
	dir := "ASC"
	field := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		field = sort[1:]
	}
	column, ok := columns[field]
	if !ok {
		return "", models.NewValidationError("sort", fmt.Sprintf("cannot sort by %q", field))
	}
	return column + " " + dir + ", id " + dir, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a substring pattern for LIKE ... ESCAPE '!', matching % and _ literally.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

// translateError maps GORM and driver errors onto the model error taxonomy.
func translateError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, models.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s still referenced: %w", what, models.ErrConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w: %w", what, models.ErrStorageUnavailable, err)
	}
}

// isUniqueViolation covers drivers that do not implement GORM's error translator.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
