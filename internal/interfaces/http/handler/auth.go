package handler

import (
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/auth"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandler lets admins revoke bearer tokens before they expire
type AuthHandler struct {
	BaseHandler
	revocations auth.RevocationStore
	// maxTokenTTL bounds how long a revocation must be remembered
	maxTokenTTL time.Duration
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(revocations auth.RevocationStore, maxTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{revocations: revocations, maxTokenTTL: maxTokenTTL, now: time.Now}
}

// RevokeRequest names either one token id or a user whose tokens are all revoked
type RevokeRequest struct {
	TokenID string     `json:"token_id" binding:"required_without=UserID,max=128"`
	UserID  *uuid.UUID `json:"user_id" binding:"required_without=TokenID"`
}

// RevokeResponse echoes what was revoked
type RevokeResponse struct {
	TokenID   string     `json:"token_id,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	RevokedAt time.Time  `json:"revoked_at"`
}

// Revoke godoc
// @ID           revokeTokens
// @Summary      Revoke a token or every token of a user
// @Description  A user revocation rejects all tokens issued before now
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RevokeRequest true "Revocation target"
// @Success      200 {object} APIResponse[RevokeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/revocations [post]
func (h *AuthHandler) Revoke(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	if err := caller.Require(shared.RoleAdmin); err != nil {
		h.HandleError(c, err)
		return
	}
	var req RevokeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	now := h.now()
	resp := RevokeResponse{RevokedAt: now}
	if req.TokenID != "" {
		if err := h.revocations.RevokeToken(ctx, req.TokenID, h.maxTokenTTL); err != nil {
			h.HandleError(c, err)
			return
		}
		resp.TokenID = req.TokenID
	}
	if req.UserID != nil {
		if err := h.revocations.RevokeUser(ctx, req.UserID.String(), now, h.maxTokenTTL); err != nil {
			h.HandleError(c, err)
			return
		}
		resp.UserID = req.UserID
	}

	logger.GetGinLogger(c).Info("tokens revoked",
		zap.String("token_id", resp.TokenID),
		zap.Any("user_id", resp.UserID),
	)
	h.Success(c, resp)
}
