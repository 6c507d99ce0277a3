package handler

import (
	"context"

	"github.com/Goutham009/tradewave-sub005/internal/application/event"
	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutboxHandler exposes dead-letter inspection and requeueing to admins
type OutboxHandler struct {
	BaseHandler
	svc *event.OutboxService
}

func NewOutboxHandler(svc *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{svc: svc}
}

// RetryAllResponse is how many dead entries were requeued
type RetryAllResponse struct {
	Count int64 `json:"count"`
}

// GetDeadLetterEntries godoc
// @ID           listDeadOutboxEvents
// @Summary      Dead-lettered events
// @Description  Events whose delivery attempts ran out, latest failure first
// @Tags         outbox
// @Produce      json
// @Param        page      query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]event.OutboxEntryDTO]
// @Failure      400,401,403,500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	var filter event.OutboxFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	page, err := h.svc.GetDeadLetterEntries(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Entries, page.Total, page.Page, page.PageSize)
}

// GetEntry godoc
// @ID           showOutboxEvent
// @Summary      Outbox event
// @Description  Delivery state of one stored domain event
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox event ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryDTO]
// @Failure      400,401,403,404,500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	h.entry(c, h.svc.GetEntry)
}

// RetryDeadEntry godoc
// @ID           requeueDeadOutboxEvent
// @Summary      Requeue a dead event
// @Description  Gives a dead-lettered event a fresh attempt budget. Only DEAD events can be requeued.
// @Tags         outbox
// @Produce      json
// @Param        id path string true "Outbox event ID" format(uuid)
// @Success      200 {object} APIResponse[event.OutboxEntryDTO]
// @Failure      400,401,403,404,422,500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/{id}/retry [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	h.entry(c, h.svc.RetryDeadEntry)
}

// RetryAllDeadEntries godoc
// @ID           requeueAllDeadOutboxEvents
// @Summary      Requeue every dead event
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[RetryAllResponse]
// @Failure      401,403,500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/dead/retry-all [post]
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	h.serve(c, func(ctx context.Context, caller shared.Caller) (any, error) {
		n, err := h.svc.RetryAllDeadEntries(ctx, caller)
		return RetryAllResponse{Count: n}, err
	})
}

// GetStats godoc
// @ID           outboxEventCounts
// @Summary      Outbox counts by delivery status
// @Tags         outbox
// @Produce      json
// @Success      200 {object} APIResponse[event.OutboxStatsDTO]
// @Failure      401,403,500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	h.serve(c, func(ctx context.Context, caller shared.Caller) (any, error) {
		return h.svc.GetStats(ctx, caller)
	})
}

// entry runs op against the entry named by the :id path parameter
func (h *OutboxHandler) entry(c *gin.Context, op func(context.Context, shared.Caller, uuid.UUID) (*event.OutboxEntryDTO, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	h.serve(c, func(ctx context.Context, caller shared.Caller) (any, error) {
		return op(ctx, caller, id)
	})
}
