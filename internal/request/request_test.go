package request

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/taskmessager/internal/domain"
	"github.com/bryan-cox/taskmessager/internal/model"
)

func validInput() model.TaskReportInput {
	return model.TaskReportInput{
		Title:             "DATA/Destek (Analiz): X",
		Summary:           "S",
		Problem:           "P",
		EstimatedDuration: "2 Saat",
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	n := NewNormalizer(nil, "Ayşe Yılmaz")
	req, err := n.Normalize(validInput())
	require.NoError(t, err)

	general, _ := domain.Builtin().Lookup(model.DefaultDomain)
	want := model.TaskReportRequest{
		Title:              "DATA/Destek (Analiz): X",
		Summary:            "S",
		Problem:            "P",
		EstimatedDuration:  "2 Saat",
		Domain:             model.DefaultDomain,
		DomainLabel:        "Genel",
		TaskOwner:          "Ayşe Yılmaz",
		AnalysisSteps:      general.AnalysisSteps,
		AcceptanceCriteria: general.AcceptanceCriteria,
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeUsesDomainDefaults(t *testing.T) {
	in := validInput()
	in.Domain = "backend"
	req, err := NewNormalizer(nil, "").Normalize(in)
	require.NoError(t, err)

	backend, _ := domain.Builtin().Lookup("backend")
	assert.Equal(t, "Backend", req.DomainLabel)
	assert.Equal(t, backend.AnalysisSteps, req.AnalysisSteps)
	assert.Equal(t, backend.AcceptanceCriteria, req.AcceptanceCriteria)
	assert.Empty(t, req.TaskOwner)
}

func TestNormalizeOverridesWholesale(t *testing.T) {
	in := validInput()
	in.TaskOwner = "  Ali  "
	in.Participants = []string{"Veli", " ", "Can "}
	in.AnalysisSteps = []model.AnalysisStep{{Title: " Adım ", Detail: " Açıklama "}}
	in.AcceptanceCriteria = []string{"Tek kriter"}

	req, err := NewNormalizer(nil, "Default Owner").Normalize(in)
	require.NoError(t, err)

	assert.Equal(t, "Ali", req.TaskOwner)
	assert.Equal(t, []string{"Veli", "Can"}, req.Participants)
	assert.Equal(t, []model.AnalysisStep{{Title: "Adım", Detail: "Açıklama"}}, req.AnalysisSteps)
	assert.Equal(t, []string{"Tek kriter"}, req.AcceptanceCriteria)

	// The input is left untouched.
	assert.Equal(t, " Adım ", in.AnalysisSteps[0].Title)
}

func TestNormalizeValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.TaskReportInput)
		field  string
	}{
		{"missing title", func(in *model.TaskReportInput) { in.Title = "" }, "title"},
		{"blank summary", func(in *model.TaskReportInput) { in.Summary = "   " }, "summary"},
		{"missing problem", func(in *model.TaskReportInput) { in.Problem = "" }, "problem"},
		{"missing duration", func(in *model.TaskReportInput) { in.EstimatedDuration = "" }, "estimated_duration"},
		{"unknown domain", func(in *model.TaskReportInput) { in.Domain = "space" }, "domain"},
		{"step without title", func(in *model.TaskReportInput) {
			in.AnalysisSteps = []model.AnalysisStep{{Title: "ok", Detail: "ok"}, {Title: "", Detail: "x"}}
		}, "analysis_steps[1].title"},
		{"step without detail", func(in *model.TaskReportInput) {
			in.AnalysisSteps = []model.AnalysisStep{{Title: "x"}}
		}, "analysis_steps[0].detail"},
		{"blank criterion", func(in *model.TaskReportInput) {
			in.AcceptanceCriteria = []string{"ok", ""}
		}, "acceptance_criteria[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewNormalizer(nil, "").Normalize(in)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestNormalizeFirstMissingFieldWins(t *testing.T) {
	_, err := NewNormalizer(nil, "").Normalize(model.TaskReportInput{})
	require.Error(t, err)
	assert.Equal(t, "title: must not be empty", err.Error())
}

func TestDecode(t *testing.T) {
	flat := map[string]any{
		"title":              "T",
		"summary":            "S",
		"problem":            "P",
		"estimated_duration": "1 Saat",
		"analysis_steps":     []any{map[string]any{"title": "a", "detail": "b"}},
	}
	want := model.TaskReportInput{
		Title:             "T",
		Summary:           "S",
		Problem:           "P",
		EstimatedDuration: "1 Saat",
		AnalysisSteps:     []model.AnalysisStep{{Title: "a", Detail: "b"}},
	}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"flat", flat},
		{"kwargs object", map[string]any{"kwargs": flat}},
		{"kwargs string", map[string]any{"kwargs": `{"title":"T","summary":"S","problem":"P","estimated_duration":"1 Saat","analysis_steps":[{"title":"a","detail":"b"}]}`}},
		{"data envelope", map[string]any{"data": flat}},
		{"payload inside kwargs", map[string]any{"kwargs": map[string]any{"payload": flat}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.args)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{"scalar field", map[string]any{"title": 42}, "title"},
		{"step field", map[string]any{"analysis_steps": []any{
			map[string]any{"title": "A", "detail": "B"},
			map[string]any{"title": 7, "detail": "D"},
		}}, "analysis_steps[1].title"},
		{"step not an object", map[string]any{"analysis_steps": []any{"Kontrol"}}, "analysis_steps[0]"},
		{"criterion", map[string]any{"acceptance_criteria": []any{"ok", true}}, "acceptance_criteria[1]"},
		{"list given as string", map[string]any{"participants": "Mehmet"}, "participants"},
		{"inside envelope", map[string]any{"data": map[string]any{
			"analysis_steps": []any{map[string]any{"title": "A", "detail": 1}},
		}}, "analysis_steps[0].detail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.args)
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	in, err := DecodeJSON([]byte(`{"title":"T","acceptance_criteria":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, "T", in.Title)
	assert.Equal(t, []string{"a", "b"}, in.AcceptanceCriteria)

	_, err = DecodeJSON([]byte(`[1,2]`))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}
