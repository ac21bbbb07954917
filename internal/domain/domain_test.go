package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/taskmessager/internal/model"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuiltinHasGeneralFallback(t *testing.T) {
	c := Builtin()
	general, ok := c.Lookup(model.DefaultDomain)
	require.True(t, ok)
	assert.Equal(t, "Genel", general.Label)
	assert.Len(t, general.AnalysisSteps, 4)
	assert.Len(t, general.AcceptanceCriteria, 3)
	assert.Equal(t, []string{"backend", "business", "data", "devops", "frontend", "general", "mobile"}, c.Keys())
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Builtin()
	d, _ := c.Lookup("backend")
	d.AnalysisSteps[0].Title = "changed"
	d.AcceptanceCriteria[0] = "changed"

	again, _ := c.Lookup("backend")
	assert.Equal(t, "API / Endpoint İnceleme", again.AnalysisSteps[0].Title)
	assert.NotEqual(t, "changed", again.AcceptanceCriteria[0])

	fresh := Builtin()
	assert.Equal(t, "API / Endpoint İnceleme", fresh["backend"].AnalysisSteps[0].Title)
}

func TestSummaries(t *testing.T) {
	s := Builtin().Summaries()
	general := s[model.DefaultDomain]
	assert.Equal(t, "Genel", general.Label)
	assert.Equal(t, []string{"Sorgulama", "Log Analizi", "Bağımlılık Kontrolü", "Bulgu Paylaşımı"}, general.DefaultSteps)
	assert.Equal(t, 3, general.DefaultCriteriaCount)
}

func TestLoadFile(t *testing.T) {
	t.Run("merges overrides over builtins", func(t *testing.T) {
		path := writeFile(t, `
domains:
  security:
    label: Güvenlik
    analysis_steps:
      - title: Zafiyet Taraması
        detail: Bağımlılıklar taranır.
    acceptance_criteria:
      - Bulgular raporlanmıştır.
  general:
    label: Diğer
    analysis_steps:
      - title: Sorgulama
        detail: Bağlam netleştirilir.
    acceptance_criteria:
      - Sonuç iletilmiştir.
`)
		c, err := LoadFile(path)
		require.NoError(t, err)

		sec, ok := c.Lookup("security")
		require.True(t, ok)
		assert.Equal(t, "Güvenlik", sec.Label)
		assert.Equal(t, []model.AnalysisStep{{Title: "Zafiyet Taraması", Detail: "Bağımlılıklar taranır."}}, sec.AnalysisSteps)

		general, _ := c.Lookup("general")
		assert.Equal(t, "Diğer", general.Label)
		assert.Len(t, general.AnalysisSteps, 1)

		_, ok = c.Lookup("backend")
		assert.True(t, ok, "builtins not named in the file are kept")
	})

	t.Run("rejects incomplete entries", func(t *testing.T) {
		path := writeFile(t, `
domains:
  broken:
    label: Broken
    acceptance_criteria: [x]
`)
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"broken" has no analysis_steps`)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "other: 1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defines no domains")
	})

	t.Run("reports invalid yaml", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "domains: [unclosed\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse YAML")
	})

	t.Run("reports missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not read domains file")
	})
}
