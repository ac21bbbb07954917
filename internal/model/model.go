// Package model defines the core data structures for the task messager.
package model

// DefaultDomain is the domain used when a request does not name one.
const DefaultDomain = "general"

// AnalysisStep is a single step of the investigation plan.
type AnalysisStep struct {
	Title  string `json:"title" yaml:"title" jsonschema:"description=Step heading, e.g. 'Sorgulama'"`
	Detail string `json:"detail" yaml:"detail" jsonschema:"description=Step explanation"`
}

// Domain is an investigation template with its default plan and criteria.
type Domain struct {
	Label              string         `json:"label" yaml:"label"`
	AnalysisSteps      []AnalysisStep `json:"analysis_steps" yaml:"analysis_steps"`
	AcceptanceCriteria []string       `json:"acceptance_criteria" yaml:"acceptance_criteria"`
}

// TaskReportInput holds the raw tool arguments before validation.
type TaskReportInput struct {
	Title              string         `json:"title" jsonschema:"description=Task title, shown in the card header"`
	Summary            string         `json:"summary" jsonschema:"description=High level summary of the task"`
	Problem            string         `json:"problem" jsonschema:"description=Problem statement"`
	EstimatedDuration  string         `json:"estimated_duration" jsonschema:"description=Estimated effort, e.g. '2 Saat'"`
	Domain             string         `json:"domain,omitempty" jsonschema:"description=Task domain: backend | frontend | devops | mobile | data | business | general"`
	TaskOwner          string         `json:"task_owner,omitempty" jsonschema:"description=Person responsible for the task; defaults to the configured owner"`
	Participants       []string       `json:"participants,omitempty" jsonschema:"description=Observers or stakeholders shown on the card; never the assignee"`
	AnalysisSteps      []AnalysisStep `json:"analysis_steps,omitempty" jsonschema:"description=Ordered checklist under 'Muhtemel Çözüm'; domain defaults when omitted"`
	AcceptanceCriteria []string       `json:"acceptance_criteria,omitempty" jsonschema:"description=Items listed under 'Kabul Kriterleri'; domain defaults when omitted"`
}

// TaskReportRequest is a validated request with every default applied.
type TaskReportRequest struct {
	Title              string
	Summary            string
	Problem            string
	EstimatedDuration  string
	Domain             string
	DomainLabel        string
	TaskOwner          string
	Participants       []string
	AnalysisSteps      []AnalysisStep
	AcceptanceCriteria []string
}

// WebhookResult is returned to the caller after a send attempt.
type WebhookResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// DomainSummary is the short listing of a domain shown to tool callers.
type DomainSummary struct {
	Label                string   `json:"label"`
	DefaultSteps         []string `json:"default_steps"`
	DefaultCriteriaCount int      `json:"default_criteria_count"`
}
