package handler

import (
	"github.com/Goutham009/tradewave-sub005/internal/application/verification"
	"github.com/gin-gonic/gin"
)

// VerificationHandler serves business verification cases
type VerificationHandler struct {
	BaseHandler
	service *verification.Service
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(service *verification.Service) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// Submit godoc
// @ID           submitVerification
// @Summary      Submit a verification case
// @Description  Creates a SUBMITTED case for the caller's business. Admins may submit on behalf of subject_id.
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        request body verification.SubmitVerificationRequest true "Verification submission"
// @Success      201 {object} APIResponse[verification.VerificationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications [post]
func (h *VerificationHandler) Submit(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req verification.SubmitVerificationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getVerification
// @Summary      Get a verification case
// @Description  Bank account numbers are masked to their last four digits
// @Tags         verifications
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Success      200 {object} APIResponse[verification.VerificationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id} [get]
func (h *VerificationHandler) Get(c *gin.Context) {
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

// Review godoc
// @ID           reviewVerification
// @Summary      Apply a review action
// @Description  START_REVIEW, APPROVE, REJECT (reason required) or REQUEST_INFO (notes required)
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Param        request body verification.ReviewRequest true "Review action"
// @Success      200 {object} APIResponse[verification.ReviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id}/review [post]
func (h *VerificationHandler) Review(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req verification.ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Review(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resubmit godoc
// @ID           resubmitVerification
// @Summary      Resubmit after an information request
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Param        request body verification.ResubmitRequest true "Updated documents"
// @Success      200 {object} APIResponse[verification.VerificationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id}/resubmit [post]
func (h *VerificationHandler) Resubmit(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req verification.ResubmitRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Resubmit(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetDocumentStatus godoc
// @ID           setVerificationDocumentStatus
// @Summary      Mark a document verified or rejected
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Param        documentId path string true "Document ID" format(uuid)
// @Param        request body verification.DocumentStatusRequest true "Document status"
// @Success      200 {object} APIResponse[verification.VerificationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id}/documents/{documentId}/status [post]
func (h *VerificationHandler) SetDocumentStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	documentID, ok := h.pathUUID(c, "documentId")
	if !ok {
		return
	}
	var req verification.DocumentStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SetDocumentStatus(c.Request.Context(), caller, id, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetComplianceItem godoc
// @ID           setVerificationComplianceItem
// @Summary      Complete or reopen a compliance checklist item
// @Tags         verifications
// @Accept       json
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Param        code path string true "Compliance item code"
// @Param        request body verification.ComplianceItemRequest true "Completion flag"
// @Success      200 {object} APIResponse[verification.VerificationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id}/compliance/{code} [post]
func (h *VerificationHandler) SetComplianceItem(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req verification.ComplianceItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SetComplianceItem(c.Request.Context(), caller, id, c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecalculateTrust godoc
// @ID           recalculateVerificationTrust
// @Summary      Recompute the trust score and risk assessment
// @Tags         verifications
// @Produce      json
// @Param        id path string true "Verification case ID" format(uuid)
// @Success      200 {object} APIResponse[verification.VerificationResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /verifications/{id}/trust/recalculate [post]
func (h *VerificationHandler) RecalculateTrust(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.RecalculateTrust(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
