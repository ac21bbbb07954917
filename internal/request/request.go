// Package request validates raw task-report arguments and applies defaults.
package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bryan-cox/taskmessager/internal/domain"
	"github.com/bryan-cox/taskmessager/internal/model"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "must not be empty"}
}

// Normalizer turns a TaskReportInput into a fully-populated TaskReportRequest.
type Normalizer struct {
	Catalog      domain.Catalog
	DefaultOwner string
}

// NewNormalizer returns a Normalizer using the given catalogue. A nil catalogue
// falls back to the built-in one.
func NewNormalizer(catalog domain.Catalog, defaultOwner string) *Normalizer {
	if catalog == nil {
		catalog = domain.Builtin()
	}
	return &Normalizer{Catalog: catalog, DefaultOwner: strings.TrimSpace(defaultOwner)}
}

// Normalize validates in and applies the configured defaults. The input is
// never modified.
func (n *Normalizer) Normalize(in model.TaskReportInput) (model.TaskReportRequest, error) {
	req := model.TaskReportRequest{
		Title:             strings.TrimSpace(in.Title),
		Summary:           strings.TrimSpace(in.Summary),
		Problem:           strings.TrimSpace(in.Problem),
		EstimatedDuration: strings.TrimSpace(in.EstimatedDuration),
		Domain:            strings.TrimSpace(in.Domain),
		TaskOwner:         strings.TrimSpace(in.TaskOwner),
	}

	required := []struct {
		field, value string
	}{
		{"title", req.Title},
		{"summary", req.Summary},
		{"problem", req.Problem},
		{"estimated_duration", req.EstimatedDuration},
	}
	for _, r := range required {
		if r.value == "" {
			return model.TaskReportRequest{}, missing(r.field)
		}
	}

	if req.Domain == "" {
		req.Domain = model.DefaultDomain
	}
	tmpl, ok := n.Catalog.Lookup(req.Domain)
	if !ok {
		return model.TaskReportRequest{}, &ValidationError{
			Field:  "domain",
			Reason: fmt.Sprintf("invalid domain %q, must be one of: %s", req.Domain, strings.Join(n.Catalog.Keys(), ", ")),
		}
	}
	req.DomainLabel = tmpl.Label

	if req.TaskOwner == "" {
		req.TaskOwner = n.DefaultOwner
	}

	for _, p := range in.Participants {
		if p = strings.TrimSpace(p); p != "" {
			req.Participants = append(req.Participants, p)
		}
	}

	if len(in.AnalysisSteps) > 0 {
		steps, err := normalizeSteps(in.AnalysisSteps)
		if err != nil {
			return model.TaskReportRequest{}, err
		}
		req.AnalysisSteps = steps
	} else {
		req.AnalysisSteps = tmpl.AnalysisSteps
	}

	if len(in.AcceptanceCriteria) > 0 {
		criteria, err := normalizeCriteria(in.AcceptanceCriteria)
		if err != nil {
			return model.TaskReportRequest{}, err
		}
		req.AcceptanceCriteria = criteria
	} else {
		req.AcceptanceCriteria = tmpl.AcceptanceCriteria
	}

	return req, nil
}

func normalizeSteps(in []model.AnalysisStep) ([]model.AnalysisStep, error) {
	out := make([]model.AnalysisStep, 0, len(in))
	for i, step := range in {
		s := model.AnalysisStep{
			Title:  strings.TrimSpace(step.Title),
			Detail: strings.TrimSpace(step.Detail),
		}
		if s.Title == "" {
			return nil, missing(fmt.Sprintf("analysis_steps[%d].title", i))
		}
		if s.Detail == "" {
			return nil, missing(fmt.Sprintf("analysis_steps[%d].detail", i))
		}
		out = append(out, s)
	}
	return out, nil
}

func normalizeCriteria(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for i, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, missing(fmt.Sprintf("acceptance_criteria[%d]", i))
		}
		out = append(out, c)
	}
	return out, nil
}
