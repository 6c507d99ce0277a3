package router

import (
	"net/http"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/handler"
)

// Handlers are the API handlers mounted by APIResources
type Handlers struct {
	Verification *handler.VerificationHandler
	Risk         *handler.RiskHandler
	Transaction  *handler.TransactionHandler
	Escrow       *handler.EscrowHandler
	Outbox       *handler.OutboxHandler
	Auth         *handler.AuthHandler
	System       *handler.SystemHandler
}

var (
	admin   = []shared.Role{shared.RoleAdmin}
	staff   = []shared.Role{shared.RoleAdmin, shared.RoleReviewer}
	parties = []shared.Role{shared.RoleAdmin, shared.RoleBuyer, shared.RoleSupplier}
	humans  = []shared.Role{shared.RoleAdmin, shared.RoleReviewer, shared.RoleBuyer, shared.RoleSupplier}
)

// APIResources is the route table. Role gates only reject callers that can
// never succeed; ownership checks live in the services.
func APIResources(h Handlers) []Resource {
	return []Resource{
		{Prefix: "/verifications", Routes: []Route{
			{http.MethodPost, "", parties, h.Verification.Submit},
			{http.MethodGet, "/:id", humans, h.Verification.Get},
			{http.MethodPost, "/:id/review", staff, h.Verification.Review},
			{http.MethodPost, "/:id/resubmit", parties, h.Verification.Resubmit},
			{http.MethodPost, "/:id/documents/:documentId/status", staff, h.Verification.SetDocumentStatus},
			{http.MethodPost, "/:id/compliance/:code", staff, h.Verification.SetComplianceItem},
			{http.MethodPost, "/:id/trust/recalculate", staff, h.Verification.RecalculateTrust},
		}},
		{Prefix: "/buyers", Routes: []Route{
			{http.MethodGet, "/:id/standing", staff, h.Risk.GetStanding},
			{http.MethodGet, "/:id/trust-profile", staff, h.Risk.GetTrustProfile},
			{http.MethodPost, "/:id/signals", admin, h.Risk.UpdateSignals},
			{http.MethodPost, "/:id/flags", staff, h.Risk.RaiseFlag},
			{http.MethodPost, "/:id/flags/:flagId/resolve", staff, h.Risk.ResolveFlag},
			{http.MethodPost, "/:id/blacklist", admin, h.Risk.SetBlacklist},
		}},
		{Prefix: "/transactions", Routes: []Route{
			{http.MethodPost, "", admin, h.Transaction.Create},
			{http.MethodGet, "/:id", parties, h.Transaction.Get},
			{http.MethodPost, "/:id/production", parties, h.Transaction.StartProduction},
			{http.MethodPost, "/:id/shipment", parties, h.Transaction.ConfirmShipment},
			{http.MethodGet, "/:id/tracking", parties, h.Transaction.TrackShipment},
			{http.MethodPost, "/:id/delivery", parties, h.Transaction.ConfirmDelivery},
			{http.MethodPost, "/:id/complete", admin, h.Transaction.Complete},
			{http.MethodPost, "/:id/cancel", admin, h.Transaction.Cancel},
		}},
		{Prefix: "/escrows", Routes: []Route{
			{http.MethodPost, "", admin, h.Escrow.Open},
			{http.MethodGet, "/:id", parties, h.Escrow.Get},
			{http.MethodPost, "/:id/conditions/:type", admin, h.Escrow.SatisfyCondition},
			{http.MethodPost, "/:id/payments", admin, h.Escrow.RecordPayment},
			{http.MethodPost, "/:id/release", admin, h.Escrow.Release},
			{http.MethodPost, "/:id/refund", admin, h.Escrow.Refund},
			{http.MethodPost, "/:id/dispute", parties, h.Escrow.Dispute},
		}},
		{Prefix: "/auth", Roles: admin, Routes: []Route{
			{Method: http.MethodPost, Path: "/revocations", Handler: h.Auth.Revoke},
		}},
		{Prefix: "/system",
			Routes: []Route{
				{Method: http.MethodGet, Path: "/info", Handler: h.System.GetSystemInfo},
			},
			Children: []Resource{{Prefix: "/outbox", Roles: admin, Routes: []Route{
				{Method: http.MethodGet, Path: "/stats", Handler: h.Outbox.GetStats},
				{Method: http.MethodGet, Path: "/dead", Handler: h.Outbox.GetDeadLetterEntries},
				{Method: http.MethodPost, Path: "/dead/retry-all", Handler: h.Outbox.RetryAllDeadEntries},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Outbox.GetEntry},
				{Method: http.MethodPost, Path: "/:id/retry", Handler: h.Outbox.RetryDeadEntry},
			}}},
		},
	}
}
