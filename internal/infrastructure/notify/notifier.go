// Package notify delivers user notifications to a webhook or the log.
package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Goutham009/tradewave-sub005/internal/domain/notification"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/httpclient"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log. Used when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{logger: log.Named("notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg notification.Notification) error {
	logger.For(ctx, n.logger).Info("notification",
		zap.String("user_id", msg.UserID.String()),
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title),
		zap.String("resource_ref", msg.ResourceRef),
	)
	return nil
}

// WebhookNotifier POSTs each notification as JSON to a single endpoint
type WebhookNotifier struct {
	url    string
	client *httpclient.Client
}

// NewWebhookNotifier creates a notifier; client carries timeout and breaker
func NewWebhookNotifier(url string, client *httpclient.Client) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg notification.Notification) error {
	header := http.Header{}
	if id := logger.GetRequestID(ctx); id != "" {
		header.Set("X-Request-ID", id)
	}
	if err := n.client.PostJSON(ctx, n.url, header, msg); err != nil {
		return fmt.Errorf("notify %s %s: %w", msg.Type, msg.UserID, err)
	}
	return nil
}

var (
	_ notification.Notifier = (*LogNotifier)(nil)
	_ notification.Notifier = (*WebhookNotifier)(nil)
)
