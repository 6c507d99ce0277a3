package handler

import (
	"github.com/Goutham009/tradewave-sub005/internal/application/trade"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
)

// Swagger-only envelope shapes. Handlers write dto.Response directly.

// APIResponse is dto.Response with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the body of every failed request
// @Description Failed request; error.context carries identifiers such as an existing transaction_id
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// GateResponse is a refused admission: the gate code in error and the evaluated checks in data
// @Description Admission refused by a compliance gate or by an existing live transaction
type GateResponse struct {
	Success bool                  `json:"success" example:"false"`
	Data    trade.AdmissionResult `json:"data"`
	Error   *dto.ErrorInfo        `json:"error"`
}
