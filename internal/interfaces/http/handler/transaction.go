package handler

import (
	"github.com/Goutham009/tradewave-sub005/internal/application/trade"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// TransactionHandler serves transaction admission and fulfillment
type TransactionHandler struct {
	BaseHandler
	admission   *trade.AdmissionService
	fulfillment *trade.FulfillmentService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(admission *trade.AdmissionService, fulfillment *trade.FulfillmentService) *TransactionHandler {
	return &TransactionHandler{admission: admission, fulfillment: fulfillment}
}

var outcomeMessages = map[string]string{
	dto.ErrCodeKYBRequired:          "buyer must complete business verification before transacting",
	dto.ErrCodeManualReviewRequired: "buyer is not in good standing; an admin override is required",
	dto.ErrCodeConflict:             "a live transaction already exists for this offer",
}

// Create godoc
// @ID           createTransaction
// @Summary      Admit an accepted offer as a transaction
// @Description  Runs the compliance gates. A gate failure answers 422 (KYB_REQUIRED, MANUAL_REVIEW_REQUIRED)
// @Description  or 409 (CONFLICT) with the admission result in data.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body trade.CreateTransactionRequest true "Admission request"
// @Success      201 {object} APIResponse[trade.AdmissionResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} GateResponse
// @Failure      422 {object} GateResponse
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req trade.CreateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.admission.CreateTransaction(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Admitted() {
		h.Created(c, result)
		return
	}

	c.JSON(dto.HTTPStatus(result.Outcome),
		dto.Fail(result.Outcome, outcomeMessages[result.Outcome], middleware.GetRequestID(c)).WithData(result))
}

// Get godoc
// @ID           getTransaction
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[trade.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.fulfillment.GetTransaction(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartProduction godoc
// @ID           startTransactionProduction
// @Summary      Move a confirmed transaction into production
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[trade.TransitionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/production [post]
func (h *TransactionHandler) StartProduction(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.fulfillment.StartProduction(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmShipment godoc
// @ID           confirmTransactionShipment
// @Summary      Confirm shipment with a tracking number
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body trade.ConfirmShipmentRequest true "Shipment"
// @Success      200 {object} APIResponse[trade.TransitionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/shipment [post]
func (h *TransactionHandler) ConfirmShipment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req trade.ConfirmShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.fulfillment.ConfirmShipment(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TrackShipment godoc
// @ID           trackTransactionShipment
// @Summary      Get the shipment with live carrier status
// @Description  Carrier data is best effort; the stored shipment is returned when the carrier is unavailable
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[trade.TrackingResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/tracking [get]
func (h *TransactionHandler) TrackShipment(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.fulfillment.TrackShipment(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmDelivery godoc
// @ID           confirmTransactionDelivery
// @Summary      Confirm delivery of a shipped transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[trade.TransitionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/delivery [post]
func (h *TransactionHandler) ConfirmDelivery(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.fulfillment.ConfirmDelivery(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete godoc
// @ID           completeTransaction
// @Summary      Complete a delivered transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[trade.TransitionResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/complete [post]
func (h *TransactionHandler) Complete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.fulfillment.Complete(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelTransaction
// @Summary      Cancel a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body trade.CancelTransactionRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[trade.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transactions/{id}/cancel [post]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req trade.CancelTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.fulfillment.Cancel(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
