// Package card builds Google Chat card messages from task-report requests.
package card

import (
	"fmt"
	"html"
	"strings"

	"github.com/bryan-cox/taskmessager/internal/model"
)

// Section headers and meta labels shown on the card.
const (
	HeaderDescription = "Görev Açıklaması"
	HeaderSolution    = "Muhtemel Çözüm"
	HeaderCriteria    = "Kabul Kriterleri"

	LabelDomain       = "Alan"
	LabelDuration     = "Tahmini Süre"
	LabelOwner        = "Sorumlu"
	LabelParticipants = "Katılımcılar"
)

// Payload is the document POSTed to the webhook.
type Payload struct {
	Cards []Card `json:"cards"`
}

// Card is a single chat card with a header and ordered sections.
type Card struct {
	Header   Header    `json:"header"`
	Sections []Section `json:"sections"`
}

// Header is the card title bar.
type Header struct {
	Title string `json:"title"`
}

// Section groups widgets under an optional header.
type Section struct {
	Header  string   `json:"header,omitempty"`
	Widgets []Widget `json:"widgets"`
}

// Widget holds exactly one of its fields.
type Widget struct {
	KeyValue      *KeyValue      `json:"keyValue,omitempty"`
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
}

// KeyValue is a labelled value widget.
type KeyValue struct {
	TopLabel string `json:"topLabel"`
	Content  string `json:"content"`
}

// TextParagraph is a block of formatted text.
type TextParagraph struct {
	Text string `json:"text"`
}

// Build maps a normalized request to its card payload. It performs no I/O and
// always yields the same structure for the same request.
func Build(req model.TaskReportRequest) Payload {
	meta := []Widget{
		keyValue(LabelDomain, req.DomainLabel),
		keyValue(LabelDuration, req.EstimatedDuration),
	}
	if req.TaskOwner != "" {
		meta = append(meta, keyValue(LabelOwner, req.TaskOwner))
	}
	if len(req.Participants) > 0 {
		meta = append(meta, keyValue(LabelParticipants, strings.Join(req.Participants, ", ")))
	}

	sections := []Section{
		{Widgets: meta},
		textSection(HeaderDescription, FormatSummary(req.Summary, req.Problem)),
		textSection(HeaderSolution, FormatSteps(req.AnalysisSteps)),
		textSection(HeaderCriteria, FormatCriteria(req.AcceptanceCriteria)),
	}

	return Payload{Cards: []Card{{
		Header:   Header{Title: html.EscapeString(req.Title)},
		Sections: sections,
	}}}
}

// FormatSummary renders the summary and problem statement block.
func FormatSummary(summary, problem string) string {
	return fmt.Sprintf("<b>Özet:</b> %s<br><br><b>Problem:</b> %s",
		html.EscapeString(summary), html.EscapeString(problem))
}

// FormatSteps renders the analysis steps as a bullet list.
func FormatSteps(steps []model.AnalysisStep) string {
	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		lines = append(lines, fmt.Sprintf("• <b>%s:</b> %s",
			html.EscapeString(step.Title), html.EscapeString(step.Detail)))
	}
	return strings.Join(lines, "<br>")
}

// FormatCriteria renders the acceptance criteria as a bullet list.
func FormatCriteria(criteria []string) string {
	lines := make([]string, 0, len(criteria))
	for _, c := range criteria {
		lines = append(lines, "• "+html.EscapeString(c))
	}
	return strings.Join(lines, "<br>")
}

func keyValue(label, content string) Widget {
	return Widget{KeyValue: &KeyValue{TopLabel: label, Content: html.EscapeString(content)}}
}

func textSection(header, text string) Section {
	return Section{
		Header:  header,
		Widgets: []Widget{{TextParagraph: &TextParagraph{Text: text}}},
	}
}
