package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopops/backend/internal/domain/shared"
	"github.com/shopops/backend/internal/domain/trade"
	"github.com/shopops/backend/internal/interfaces/http/dto"
	"github.com/shopops/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by all resource handlers.
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler with the given logger
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success sends a 200 response with the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response with the standard envelope
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidInput, message, middleware.GetRequestID(c)))
}

// HandleError converts domain errors to HTTP responses. Domain error codes
// are normalized to the public taxonomy; anything unrecognized surfaces as
// an internal error so callers never see raw infrastructure failures.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code),
			dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	h.logger.Error("unhandled error",
		zap.String("request_id", requestID),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Internal server error", requestID))
}

// currentUserID extracts the authenticated user's UUID from the context.
// Routes reaching handlers pass through JWT auth first, so a missing or
// malformed ID means a misconfigured route rather than a client mistake.
func (h *BaseHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := middleware.GetJWTUserID(c)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", middleware.GetRequestID(c)))
		return uuid.Nil, false
	}
	return id, true
}

// parseStatsPeriod reads the optional date_from / date_to query parameters
// for stats endpoints. Each accepts RFC3339 or a plain date; a plain
// date_from means the start of that day, a plain date_to its end.
func (h *BaseHandler) parseStatsPeriod(c *gin.Context) (trade.DateRange, bool) {
	var period trade.DateRange

	if raw := c.Query("date_from"); raw != "" {
		ts, err := parseDayBound(raw, false)
		if err != nil {
			h.BadRequest(c, "Invalid date_from format")
			return period, false
		}
		period.From = &ts
	}
	if raw := c.Query("date_to"); raw != "" {
		ts, err := parseDayBound(raw, true)
		if err != nil {
			h.BadRequest(c, "Invalid date_to format")
			return period, false
		}
		period.To = &ts
	}
	return period, true
}

func parseDayBound(raw string, endOfDay bool) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}

// parseIDParam binds and parses the :id path parameter
func (h *BaseHandler) parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
