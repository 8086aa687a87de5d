// Package schemas defines the wire-level types shared between the HTTP API,
// the analyzer core, and the completion-provider clients.
package schemas

// AnalyzeRequest is the caller-supplied input for one analysis. Only LogText
// is required; the remaining fields are free-form metadata and an empty string
// means "not provided".
type AnalyzeRequest struct {
	LogText           string `json:"log_text"`
	KernelVersion     string `json:"kernel_version,omitempty"`
	Distro            string `json:"distro,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// RelatedIssue points at a public bug or CVE the model recognized in the log.
type RelatedIssue struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TraceFrame annotates a single frame of the call trace found in the log.
type TraceFrame struct {
	Func string `json:"func"`
	Note string `json:"note"`
}

// AnalysisReport is the single structured output of an analysis. Every field
// is required; a report is either fully populated or never constructed.
type AnalysisReport struct {
	CrashType         string         `json:"crash_type"`
	Severity          string         `json:"severity"`
	Confidence        int            `json:"confidence"`
	RootCause         string         `json:"root_cause"`
	DetailedAnalysis  string         `json:"detailed_analysis"`
	AffectedSubsystem string         `json:"affected_subsystem"`
	ProbableTrigger   string         `json:"probable_trigger"`
	SuggestedFixes    []string       `json:"suggested_fixes"`
	RelatedIssues     []RelatedIssue `json:"related_issues"`
	AnnotatedTrace    []TraceFrame   `json:"annotated_trace"`
}

// KnownCrashTypes is the closed set the model is instructed to choose from.
// Values outside it are passed through rather than rejected; the analyzer
// logs a warning so drift in model behavior stays visible.
var KnownCrashTypes = map[string]bool{
	"Kernel Panic":          true,
	"Oops":                  true,
	"OOM Kill":              true,
	"Hung Task":             true,
	"GPU Fault":             true,
	"Filesystem Corruption": true,
	"Segfault":              true,
	"Soft Lockup":           true,
	"Hard Lockup":           true,
	"Other":                 true,
}

// KnownSeverities mirrors the severity vocabulary from the system prompt.
var KnownSeverities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}
