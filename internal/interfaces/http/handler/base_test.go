package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func serveBase(t *testing.T, fn gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/things/:id", fn)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NewNotFoundError("transaction"), http.StatusNotFound, shared.CodeNotFound},
		{"forbidden", shared.NewDomainError(shared.CodeForbidden, "no"), http.StatusForbidden, shared.CodeForbidden},
		{"validation", shared.NewValidationError("bad amount"), http.StatusBadRequest, shared.CodeValidation},
		{"invalid transition", shared.NewDomainError(shared.CodeInvalidTransition, "nope"), http.StatusUnprocessableEntity, shared.CodeInvalidTransition},
		{"kyb required", shared.NewDomainError(shared.CodeKYBRequired, "verify first"), http.StatusUnprocessableEntity, shared.CodeKYBRequired},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
		{"wrapped internal", shared.WrapInternal("save failed", errors.New("disk full")), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveBase(t, func(c *gin.Context) { h.HandleError(c, tt.err) })

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestHandleError_HidesInternalCause(t *testing.T) {
	h := &BaseHandler{}
	w := serveBase(t, func(c *gin.Context) {
		h.HandleError(c, shared.WrapInternal("save failed", errors.New("password=hunter2")))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "save failed")
}

func TestHandleError_SurfacesDetailsAsContext(t *testing.T) {
	h := &BaseHandler{}
	existing := uuid.New()
	w := serveBase(t, func(c *gin.Context) {
		h.HandleError(c, shared.NewDomainError(shared.CodeConflict, "offer already has a live transaction").
			WithDetail("transaction_id", existing.String()))
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, existing.String(), resp.Error.Context["transaction_id"])
}

func TestPathUUID(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/things/:id", func(c *gin.Context) {
		id, ok := h.pathUUID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id)
	})

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/"+id.String(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
	})

	t.Run("malformed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		assert.Equal(t, "invalid id", resp.Error.Message)
	})
}

func TestCaller(t *testing.T) {
	h := &BaseHandler{}
	handle := func(c *gin.Context) {
		caller, ok := h.caller(c)
		if !ok {
			return
		}
		h.Success(c, caller.Role)
	}

	t.Run("missing caller", func(t *testing.T) {
		w := serveBase(t, handle)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
	})

	t.Run("present caller", func(t *testing.T) {
		w := serveBase(t, func(c *gin.Context) {
			middleware.SetCaller(c, shared.NewCaller(uuid.New(), shared.RoleReviewer))
			handle(c)
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "REVIEWER")
	})
}
