package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rhombick-backend/logger"
	"rhombick-backend/models"
)

const idempotencyHeader = "Idempotency-Key"

// Idempotency replays the stored response when a mutating request repeats its Idempotency-Key.
// The key row is claimed before the handler runs and completed after it succeeds.
// If the response cannot be stored the claim is released, so a retry runs again instead of
// being refused as in-flight.
func Idempotency(db *gorm.DB, log *zap.Logger) fiber.Handler {
	log = log.Named("idempotency")
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		userID, _ := c.Locals("userID").(string)
		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body(), userID)
		ctxDB := db.WithContext(c.UserContext())

		// Phase 1: read or claim the key.
		var existing models.IdempotencyKey
		replay := false
		err := ctxDB.Transaction(func(tx *gorm.DB) error {
			err := tx.Where(map[string]any{"key": key}).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rec := models.IdempotencyKey{
					Key:         key,
					RequestHash: reqHash,
					Method:      method,
					Path:        path,
					UserID:      userID,
				}
				if e2 := tx.Create(&rec).Error; e2 != nil {
					return fiber.NewError(fiber.StatusConflict, "Idempotency-Key is being processed")
				}
				existing = rec
				return nil
			}
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
			}
			if existing.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if existing.ResponseStatus == 0 {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key is being processed")
			}
			replay = true
			return nil
		})
		if err != nil {
			return err
		}
		if replay {
			c.Set("Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}

		if err := c.Next(); err != nil {
			// Release the claim so the client can retry with the same key.
			releaseKey(ctxDB, logger.FromContext(c.UserContext(), log), key)
			return err
		}

		// Phase 2: store the response.
		now := time.Now().UTC()
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		err = ctxDB.Model(&models.IdempotencyKey{}).
			Where(map[string]any{"key": key}).
			Updates(map[string]any{
				"response_status": c.Response().StatusCode(),
				"response_body":   blob,
				"completed_at":    &now,
			}).Error
		if err != nil {
			l := logger.FromContext(c.UserContext(), log)
			l.Error("store idempotent response", zap.String("key", key), zap.Error(err))
			releaseKey(ctxDB, l, key)
		}
		return nil
	}
}

// releaseKey drops a claim that never completed.
func releaseKey(db *gorm.DB, log *zap.Logger, key string) {
	err := db.Where(map[string]any{"key": key, "response_status": 0}).Delete(&models.IdempotencyKey{}).Error
	if err != nil {
		log.Error("release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func requestHash(method, path string, body []byte, userID string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(method), []byte(path), body, []byte(userID)} {
		h.Write(part)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
