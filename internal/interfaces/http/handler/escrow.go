package handler

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/application/escrow"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EscrowHandler serves the escrow ledger
type EscrowHandler struct {
	BaseHandler
	service *escrow.Service
}

// NewEscrowHandler creates a new EscrowHandler
func NewEscrowHandler(service *escrow.Service) *EscrowHandler {
	return &EscrowHandler{service: service}
}

// Open godoc
// @ID           openEscrow
// @Summary      Open the escrow of a transaction
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        request body escrow.OpenEscrowRequest true "Escrow terms"
// @Success      201 {object} APIResponse[escrow.EscrowResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows [post]
func (h *EscrowHandler) Open(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req escrow.OpenEscrowRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Open(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getEscrow
// @Summary      Get an escrow
// @Tags         escrows
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Success      200 {object} APIResponse[escrow.EscrowResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id} [get]
func (h *EscrowHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SatisfyCondition godoc
// @ID           satisfyEscrowCondition
// @Summary      Mark a release condition satisfied
// @Description  Idempotent: satisfying an already satisfied condition answers changed=false
// @Tags         escrows
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Param        type path string true "Condition type" Enums(DELIVERY_CONFIRMED, QUALITY_APPROVED, DOCUMENTS_VERIFIED)
// @Success      200 {object} APIResponse[escrow.ConditionChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id}/conditions/{type} [post]
func (h *EscrowHandler) SatisfyCondition(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.SatisfyReleaseCondition(c.Request.Context(), caller, id, c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment godoc
// @ID           recordEscrowPayment
// @Summary      Record the advance or balance payment
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Param        request body escrow.RecordPaymentRequest true "Payment stage"
// @Success      200 {object} APIResponse[escrow.ConditionChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id}/payments [post]
func (h *EscrowHandler) RecordPayment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req escrow.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Release godoc
// @ID           releaseEscrow
// @Summary      Release a funded escrow to the supplier
// @Description  Requires every release condition to be satisfied
// @Tags         escrows
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Success      200 {object} APIResponse[escrow.ConditionChangeResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id}/release [post]
func (h *EscrowHandler) Release(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Release(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refund godoc
// @ID           refundEscrow
// @Summary      Refund an escrow to the buyer
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Param        request body escrow.ReasonRequest true "Refund reason"
// @Success      200 {object} APIResponse[escrow.ConditionChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id}/refund [post]
func (h *EscrowHandler) Refund(c *gin.Context) {
	h.withReason(c, h.service.Refund)
}

// Dispute godoc
// @ID           disputeEscrow
// @Summary      Open a dispute on an escrow
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        id path string true "Escrow ID" format(uuid)
// @Param        request body escrow.ReasonRequest true "Dispute reason"
// @Success      200 {object} APIResponse[escrow.ConditionChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /escrows/{id}/dispute [post]
func (h *EscrowHandler) Dispute(c *gin.Context) {
	h.withReason(c, h.service.Dispute)
}

type reasonOperation func(ctx context.Context, caller shared.Caller, id uuid.UUID, req escrow.ReasonRequest) (*escrow.ConditionChangeResponse, error)

func (h *EscrowHandler) withReason(c *gin.Context, op reasonOperation) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req escrow.ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := op(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
