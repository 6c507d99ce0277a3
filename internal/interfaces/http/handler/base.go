// Package handler adapts the application services to gin.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// caller returns the authenticated caller, writing a 401 when there is none
func (h *BaseHandler) caller(c *gin.Context) (shared.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		h.Unauthorized(c, "authentication required")
		return shared.Caller{}, false
	}
	return caller, true
}

// pathUUID parses a uuid path parameter, writing a 400 when it is malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// serve resolves the caller, runs op and writes its result or error
func (h *BaseHandler) serve(c *gin.Context, op func(ctx context.Context, caller shared.Caller) (any, error)) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	out, err := op(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// bindJSON binds and validates the body, writing the validation envelope on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ValidationResponse(err, middleware.GetRequestID(c)))
		return false
	}
	return true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Paged(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.HTTPStatus(code), dto.Fail(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// HandleError converts an error returned by a service into a response.
// Domain errors keep their code; anything else is logged and hidden behind INTERNAL_ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != shared.CodeInternal {
		c.JSON(dto.HTTPStatus(domainErr.Code), dto.Fail(domainErr.Code, domainErr.Message, middleware.GetRequestID(c)).
			WithContext(domainErr.Details))
		return
	}

	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, dto.ErrCodeInternal, "an unexpected error occurred")
}
