// Package httpclient wraps outbound HTTP calls to third parties with a
// circuit breaker, a client-side rate limit and OpenTelemetry propagation.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the breaker is open or half-open and saturated
var ErrUnavailable = errors.New("upstream temporarily unavailable")

// maxErrorBody bounds how much of an error response is kept for the log
const maxErrorBody = 1024

// StatusError is a non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client
type Config struct {
	// Name labels the breaker and log lines
	Name    string
	Timeout time.Duration
	// RatePerSecond <= 0 disables the limiter
	RatePerSecond float64
	Burst         int
	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout      time.Duration
	ConsecutiveFailures uint32
	// Transport is wrapped by otelhttp; nil means http.DefaultTransport
	Transport http.RoundTripper
}

// Client sends requests through the breaker and limiter
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Client
func New(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	log = log.Named(cfg.Name)

	c := &Client{
		name: cfg.Name,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		logger: log,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// 4xx answers mean the upstream is healthy
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// State reports the breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Do sends req and returns the body of a 2xx response. Other statuses come
// back as *StatusError. The limiter wait honours ctx.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", c.name, err)
		}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", c.name, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if len(body) > maxErrorBody {
				body = body[:maxErrorBody]
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.For(ctx, c.logger).Debug("request rejected by open breaker")
			return nil, fmt.Errorf("%s: %w", c.name, ErrUnavailable)
		}
		return nil, err
	}
	return out.([]byte), nil
}

// GetJSON decodes the response of a GET into dst
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	copyHeader(req.Header, header)
	req.Header.Set("Accept", "application/json")

	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

// PostJSON encodes payload as the body of a POST
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")

	_, err = c.Do(ctx, req)
	return err
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
