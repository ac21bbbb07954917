package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bryan-cox/taskmessager/internal/model"
)

// envelopeKeys are the wrapper objects some clients put the arguments in.
var envelopeKeys = []string{"data", "input", "payload"}

// Decode converts raw tool arguments into a TaskReportInput. Arguments wrapped
// in a "kwargs" value (object or JSON string) or in a single "data", "input"
// or "payload" object are unwrapped first.
func Decode(args map[string]any) (model.TaskReportInput, error) {
	args = unwrap(args)

	raw, err := json.Marshal(args)
	if err != nil {
		return model.TaskReportInput{}, fmt.Errorf("failed to encode arguments: %w", err)
	}

	var in model.TaskReportInput
	if err := json.Unmarshal(raw, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return model.TaskReportInput{}, &ValidationError{
				Field:  fieldPath(args, typeErr.Field),
				Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return model.TaskReportInput{}, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return in, nil
}

// DecodeJSON decodes a JSON document into a TaskReportInput.
func DecodeJSON(data []byte) (model.TaskReportInput, error) {
	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return model.TaskReportInput{}, fmt.Errorf("request must be a JSON object: %w", err)
	}
	return Decode(args)
}

func unwrap(args map[string]any) map[string]any {
	if wrapped, ok := args["kwargs"]; ok {
		switch v := wrapped.(type) {
		case map[string]any:
			args = v
		case string:
			var inner map[string]any
			if err := json.Unmarshal([]byte(v), &inner); err == nil {
				args = inner
			}
		}
	}

	if _, flat := args["title"]; flat {
		return args
	}
	for _, key := range envelopeKeys {
		if inner, ok := args[key].(map[string]any); ok {
			return inner
		}
	}
	return args
}

// fieldPath adds the element index to a type error inside a list argument,
// so that decode and validation errors name fields the same way
// (analysis_steps[1].title rather than analysis_steps.title).
func fieldPath(args map[string]any, field string) string {
	head, rest, _ := strings.Cut(field, ".")
	items, ok := args[head].([]any)
	if !ok {
		return field
	}

	var elem func() any
	switch head {
	case "analysis_steps":
		elem = func() any { return &model.AnalysisStep{} }
	case "acceptance_criteria", "participants":
		elem = func() any { return new(string) }
	default:
		return field
	}

	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if json.Unmarshal(raw, elem()) != nil {
			path := fmt.Sprintf("%s[%d]", head, i)
			if rest != "" {
				path += "." + rest
			}
			return path
		}
	}
	return field
}
