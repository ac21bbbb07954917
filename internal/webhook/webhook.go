// Package webhook delivers card payloads to a Google Chat incoming webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bryan-cox/taskmessager/internal/metrics"
	"github.com/bryan-cox/taskmessager/internal/model"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

// DefaultTimeout bounds a single webhook POST.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of an error response is kept in the result.
const maxBodyBytes = 64 << 10

const defaultUserAgent = "MCP-Task-Messager/" + Version

// MessageSent is the result message of a successful delivery.
const MessageSent = "Message sent"

// Sender posts payloads to a single webhook URL.
type Sender struct {
	URL       string
	Client    *http.Client
	UserAgent string
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Option configures a Sender.
type Option func(*Sender)

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) Option {
	return func(s *Sender) { s.Client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) { s.Logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Sender) { s.Metrics = r }
}

// NewSender returns a Sender for url.
func NewSender(url string, opts ...Option) *Sender {
	s := &Sender{
		URL:       strings.TrimSpace(url),
		Client:    &http.Client{Timeout: DefaultTimeout},
		UserAgent: defaultUserAgent,
		Logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send performs one POST of payload as JSON. Failures of any kind are reported
// through the returned result; Send never retries. Zero-valued fields of a
// Sender fall back to the NewSender defaults.
func (s *Sender) Send(ctx context.Context, payload any) model.WebhookResult {
	logger := s.logger()
	url := strings.TrimSpace(s.URL)
	if url == "" {
		logger.Warn("webhook URL not set")
		s.Metrics.CountWebhook(metrics.OutcomeNotConfigured)
		return model.WebhookResult{Success: false, Message: "GOOGLE_CHAT_WEBHOOK_URL is not set"}
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		s.Metrics.CountWebhook(metrics.OutcomeRequestError)
		logger.Error("failed to encode payload", "error", err)
		return model.WebhookResult{Success: false, Message: fmt.Sprintf("Request error: failed to encode payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		s.Metrics.CountWebhook(metrics.OutcomeRequestError)
		logger.Error("failed to build webhook request", "error", err)
		return model.WebhookResult{Success: false, Message: fmt.Sprintf("Request error: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("User-Agent", s.userAgent())

	start := time.Now()
	logger.Info("sending message to Google Chat webhook")
	resp, err := s.client().Do(req)
	if err != nil {
		elapsed := time.Since(start)
		s.Metrics.ObserveWebhook(metrics.OutcomeRequestError, elapsed)
		logger.Error("request error while sending message", "error", err, "duration", elapsed)
		return model.WebhookResult{Success: false, Message: fmt.Sprintf("Request error: %v", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.Metrics.ObserveWebhook(metrics.OutcomeHTTPError, elapsed)
		text := strings.TrimSpace(string(respBody))
		logger.Error("failed to send message", "status", resp.StatusCode, "body", text, "duration", elapsed)
		return model.WebhookResult{
			Success:    false,
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text),
			HTTPStatus: resp.StatusCode,
		}
	}

	s.Metrics.ObserveWebhook(metrics.OutcomeSuccess, elapsed)
	logger.Info("message sent", "status", resp.StatusCode, "duration", elapsed)
	return model.WebhookResult{Success: true, Message: MessageSent, HTTPStatus: resp.StatusCode}
}

var defaultClient = &http.Client{Timeout: DefaultTimeout}

func (s *Sender) client() *http.Client {
	if s.Client == nil {
		return defaultClient
	}
	return s.Client
}

func (s *Sender) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Sender) userAgent() string {
	if s.UserAgent == "" {
		return defaultUserAgent
	}
	return s.UserAgent
}
