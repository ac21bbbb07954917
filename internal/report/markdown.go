// Package report renders task reports as plain Markdown documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bryan-cox/taskmessager/internal/model"
)

// Section headings for Markdown output.
const (
	MarkdownSummary  = "**Özet:**"
	MarkdownProblem  = "**Problem:**"
	MarkdownSolution = "**Muhtemel Çözüm:**"
	MarkdownCriteria = "**Kabul Kriterleri:**"
)

// WriteMarkdown writes req as a Markdown document to out.
func WriteMarkdown(out io.Writer, req model.TaskReportRequest) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", req.Title)

	fmt.Fprintf(&b, "- **Alan:** %s\n", req.DomainLabel)
	fmt.Fprintf(&b, "- **Tahmini Süre:** %s\n", req.EstimatedDuration)
	if req.TaskOwner != "" {
		fmt.Fprintf(&b, "- **Sorumlu:** %s\n", req.TaskOwner)
	}
	if len(req.Participants) > 0 {
		fmt.Fprintf(&b, "- **Katılımcılar:** %s\n", strings.Join(req.Participants, ", "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %s\n\n", MarkdownSummary, req.Summary)
	fmt.Fprintf(&b, "%s %s\n\n", MarkdownProblem, req.Problem)

	fmt.Fprintln(&b, MarkdownSolution)
	for i, step := range req.AnalysisSteps {
		fmt.Fprintf(&b, "%d. **%s:**\n", i+1, step.Title)
		fmt.Fprintf(&b, "   - %s\n", step.Detail)
	}
	b.WriteString("\n")

	fmt.Fprintln(&b, MarkdownCriteria)
	for _, c := range req.AcceptanceCriteria {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	_, err := io.WriteString(out, b.String())
	return err
}

// Markdown returns req rendered as Markdown.
func Markdown(req model.TaskReportRequest) string {
	var b strings.Builder
	_ = WriteMarkdown(&b, req)
	return b.String()
}
