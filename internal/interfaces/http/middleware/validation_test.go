package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shipmentBody struct {
	TrackingNumber string `json:"tracking_number" binding:"required,tracking"`
	Provider       string `json:"provider" binding:"required,max=5"`
	Items          []struct {
		Stage string `json:"stage" binding:"oneof=ADVANCE BALANCE"`
	} `json:"items" binding:"dive"`
}

func bindRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())
	r := gin.New()
	r.Use(RequestID())
	r.POST("/bind", func(c *gin.Context) {
		var body shipmentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, ValidationResponse(err, GetRequestID(c)))
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func postJSON(r http.Handler, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestValidation_Valid(t *testing.T) {
	w, _ := postJSON(bindRouter(t), `{"tracking_number":"TRK-123","provider":"dhl","items":[{"stage":"ADVANCE"}]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidation_FieldDetails(t *testing.T) {
	w, resp := postJSON(bindRouter(t), `{"tracking_number":"AB","provider":"longcarrier","items":[{"stage":"LATER"}]}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "rid-1", resp.Error.RequestID)

	byField := map[string]string{}
	for _, d := range resp.Error.Details {
		byField[d.Field] = d.Message
	}
	assert.Contains(t, byField["tracking_number"], "tracking number")
	assert.Equal(t, "must be at most 5 characters", byField["provider"])
	assert.Equal(t, "must be one of: ADVANCE BALANCE", byField["items[0].stage"])
}

func TestValidation_TrackingRejectsWhitespace(t *testing.T) {
	for _, tn := range []string{" TRK-123", "TRK 123", "TRK-123\t"} {
		w, resp := postJSON(bindRouter(t), `{"tracking_number":"`+strings.ReplaceAll(tn, "\t", `\t`)+`","provider":"dhl"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, tn)
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "tracking_number", resp.Error.Details[0].Field)
	}
}

func TestValidation_MalformedJSON(t *testing.T) {
	w, resp := postJSON(bindRouter(t), `{"tracking_number":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
