package handler

import (
	"github.com/Goutham009/tradewave-sub005/internal/application/risk"
	"github.com/gin-gonic/gin"
)

// RiskHandler serves buyer standing and trust profiles
type RiskHandler struct {
	BaseHandler
	service *risk.Service
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(service *risk.Service) *RiskHandler {
	return &RiskHandler{service: service}
}

// GetStanding godoc
// @ID           getBuyerStanding
// @Summary      Evaluate a buyer's good standing
// @Description  Returns the standing verdict with every check that was evaluated
// @Tags         buyers
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Success      200 {object} APIResponse[risk.StandingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/standing [get]
func (h *RiskHandler) GetStanding(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetStanding(c.Request.Context(), caller, buyerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetTrustProfile godoc
// @ID           getBuyerTrustProfile
// @Summary      Get a buyer's trust profile
// @Description  A buyer without a stored profile gets the default profile
// @Tags         buyers
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Success      200 {object} APIResponse[risk.TrustProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/trust-profile [get]
func (h *RiskHandler) GetTrustProfile(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetTrustProfile(c.Request.Context(), caller, buyerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateSignals godoc
// @ID           updateBuyerSignals
// @Summary      Replace a buyer's scoring signals
// @Tags         buyers
// @Accept       json
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Param        request body risk.UpdateSignalsRequest true "Signals"
// @Success      200 {object} APIResponse[risk.TrustProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/signals [post]
func (h *RiskHandler) UpdateSignals(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req risk.UpdateSignalsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateSignals(c.Request.Context(), caller, buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RaiseFlag godoc
// @ID           raiseBuyerFlag
// @Summary      Raise a risk flag on a buyer
// @Tags         buyers
// @Accept       json
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Param        request body risk.RaiseFlagRequest true "Flag"
// @Success      200 {object} APIResponse[risk.TrustProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/flags [post]
func (h *RiskHandler) RaiseFlag(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req risk.RaiseFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.RaiseFlag(c.Request.Context(), caller, buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ResolveFlag godoc
// @ID           resolveBuyerFlag
// @Summary      Resolve a risk flag
// @Tags         buyers
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Param        flagId path string true "Flag ID" format(uuid)
// @Success      200 {object} APIResponse[risk.TrustProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/flags/{flagId}/resolve [post]
func (h *RiskHandler) ResolveFlag(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	flagID, ok := h.pathUUID(c, "flagId")
	if !ok {
		return
	}

	resp, err := h.service.ResolveFlag(c.Request.Context(), caller, buyerID, flagID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetBlacklist godoc
// @ID           setBuyerBlacklist
// @Summary      Set a buyer's blacklist status
// @Tags         buyers
// @Accept       json
// @Produce      json
// @Param        id path string true "Buyer ID" format(uuid)
// @Param        request body risk.SetBlacklistRequest true "Blacklist status"
// @Success      200 {object} APIResponse[risk.TrustProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /buyers/{id}/blacklist [post]
func (h *RiskHandler) SetBlacklist(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	buyerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req risk.SetBlacklistRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.SetBlacklist(c.Request.Context(), caller, buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
