package rest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const idempotencyTTL = 24 * time.Hour

// withIdempotency выполняет handler под защитой idempotency-key.
//
// Первый запрос с ключом создаёт запись processing, выполняет handler и
// сохраняет получившийся HTTP-ответ. Повтор с тем же ключом и телом
// возвращает сохранённый ответ без повторного выполнения; повтор с другим
// телом — конфликт.
func (s *Server) withIdempotency(c *fiber.Ctx, key string, handler func() error) error {
	if s.idempotency == nil {
		return handler()
	}

	hash := requestHash(c.Method(), c.Path(), c.Body())

	record, err := s.idempotency.CreateProcessing(key, hash, time.Now().UTC().Add(idempotencyTTL))
	switch {
	case err == nil:
		// Новый ключ: выполняем запрос и сохраняем ответ.
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return errorResponse(c, fiber.StatusConflict, "IDEMPOTENCY_CONFLICT",
			"idempotency key is used with different request", nil)
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		if !record.Status.Terminal() {
			return errorResponse(c, fiber.StatusConflict, "IDEMPOTENCY_IN_PROGRESS",
				"request with this idempotency key is being processed", nil)
		}
		return replayResponse(c, record)
	default:
		s.logger.WithError(err).WithField("idempotency_key", key).Error("failed to create idempotency record")
		return errorResponse(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
	}

	if err := handler(); err != nil {
		return err
	}

	status := c.Response().StatusCode()
	body := append([]byte(nil), c.Response().Body()...)

	var markErr error
	if status < fiber.StatusBadRequest {
		markErr = s.idempotency.MarkDone(key, body, status)
	} else {
		markErr = s.idempotency.MarkFailed(key, body, status)
	}
	if markErr != nil {
		s.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotency response")
	}

	return nil
}

func replayResponse(c *fiber.Ctx, record domain.IdempotencyRecord) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(record.HTTPStatus).Send(record.ResponseBody)
}

func requestHash(method, path string, body []byte) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", method, path, body)))
	return hex.EncodeToString(sum[:])
}
