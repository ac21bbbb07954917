// Package service runs the task-report pipeline: normalize, build the card,
// send it to the webhook.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bryan-cox/taskmessager/internal/card"
	"github.com/bryan-cox/taskmessager/internal/metrics"
	"github.com/bryan-cox/taskmessager/internal/model"
	"github.com/bryan-cox/taskmessager/internal/request"
)

// Sender delivers a payload and reports the outcome.
type Sender interface {
	Send(ctx context.Context, payload any) model.WebhookResult
}

// Service sends task reports.
type Service struct {
	normalizer *request.Normalizer
	sender     Sender
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// New returns a Service. logger and rec may be nil.
func New(n *request.Normalizer, s Sender, logger *slog.Logger, rec *metrics.Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{normalizer: n, sender: s, logger: logger, metrics: rec}
}

// Preview normalizes in and builds its card without sending anything.
func (s *Service) Preview(in model.TaskReportInput) (model.TaskReportRequest, card.Payload, error) {
	req, err := s.normalizer.Normalize(in)
	if err != nil {
		return model.TaskReportRequest{}, card.Payload{}, err
	}
	return req, card.Build(req), nil
}

// SendTaskReport validates in, builds the card and posts it. A validation
// failure is returned as err together with an unsuccessful result describing
// it; delivery failures are reported only through the result.
func (s *Service) SendTaskReport(ctx context.Context, in model.TaskReportInput) (model.WebhookResult, error) {
	logger := s.logger.With("request_id", uuid.NewString())

	req, payload, err := s.Preview(in)
	if err != nil {
		s.metrics.ObserveValidationFailure()
		logger.Error("failed to parse input", "error", err)
		return model.WebhookResult{Success: false, Message: "Invalid input: " + err.Error()}, err
	}

	logger.Info("sending task report", "title", req.Title, "domain", req.Domain)
	res := s.sender.Send(ctx, payload)
	logger.Info("task report processed", "success", res.Success, "http_status", res.HTTPStatus)
	return res, nil
}
