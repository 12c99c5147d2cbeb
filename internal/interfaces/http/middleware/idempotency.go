package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader is the header clients send to deduplicate retries
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds client-supplied keys
const maxIdempotencyKeyLength = 200

// Idempotency rejects a mutating request whose Idempotency-Key has already
// been seen within the configured TTL. Requests without the header pass
// through untouched; sending the key is the client's opt-in.
//
// The key is claimed before the handler runs, so a request that fails after
// claiming still burns its key. That is the safe direction for stock
// mutations: a retry that might double-deduct is worse than a retry the
// client has to re-issue under a fresh key.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || store == nil {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency key too long", GetRequestID(c)))
			return
		}

		fresh, err := store.MarkProcessed(c.Request.Context(), key, cfg.TTL)
		if err != nil {
			// An unreachable store must not take mutations down with it
			logger.Warn("idempotency store unavailable, skipping check",
				zap.Error(err),
				zap.String("request_id", GetRequestID(c)))
			c.Next()
			return
		}

		if !fresh {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeDuplicateRequest),
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeDuplicateRequest,
					"Request with this idempotency key was already processed",
					GetRequestID(c)))
			return
		}

		c.Next()
	}
}
