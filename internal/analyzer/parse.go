package analyzer

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/crashlens/crashlens/api/schemas"
)

// stripFence defensively removes a single enclosing markdown code fence from
// the model's reply. Models frequently wrap JSON in a fence despite explicit
// instructions not to. The heuristic assumes at most one fence pair and that
// the opening line carries only the fence and an optional language tag, so it
// discards the whole first line. Replies without fence markers pass through
// unchanged, making the function idempotent.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.IndexByte(raw, '\n'); i >= 0 {
			raw = raw[i+1:]
		} else {
			// The entire reply is a single fence line.
			raw = ""
		}
	}
	if strings.HasSuffix(raw, "```") {
		raw = strings.TrimSuffix(raw, "```")
	}

	return strings.TrimSpace(raw)
}

// rawReport mirrors AnalysisReport with pointer fields so that a missing key
// can be told apart from a present-but-empty value, and with json.Number for
// confidence so that non-integer values can be rejected instead of silently
// truncated.
type rawReport struct {
	CrashType         *string                 `json:"crash_type"`
	Severity          *string                 `json:"severity"`
	Confidence        *json.Number            `json:"confidence"`
	RootCause         *string                 `json:"root_cause"`
	DetailedAnalysis  *string                 `json:"detailed_analysis"`
	AffectedSubsystem *string                 `json:"affected_subsystem"`
	ProbableTrigger   *string                 `json:"probable_trigger"`
	SuggestedFixes    *[]string               `json:"suggested_fixes"`
	RelatedIssues     *[]schemas.RelatedIssue `json:"related_issues"`
	AnnotatedTrace    *[]schemas.TraceFrame   `json:"annotated_trace"`
}

// ParseReport turns the provider's raw reply text into a validated report.
// Either the full report validates or an error is returned; there is no
// partial acceptance and no repair beyond fence stripping.
func ParseReport(raw string) (*schemas.AnalysisReport, error) {
	cleaned := stripFence(raw)

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var rr rawReport
	if err := dec.Decode(&rr); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// Syntactically valid JSON with a wrong type somewhere is a shape
			// problem, not a parse problem.
			field := typeErr.Field
			if field == "" {
				field = "(document root)"
			}
			return nil, &SchemaError{Field: field, Reason: "has unexpected type " + typeErr.Value}
		}
		return nil, &MalformedReplyError{Err: err}
	}
	if dec.More() {
		return nil, &MalformedReplyError{Err: errors.New("trailing data after JSON document")}
	}

	return validateReport(&rr)
}

func validateReport(rr *rawReport) (*schemas.AnalysisReport, error) {
	// Required-field presence, in schema order so the first error is stable.
	switch {
	case rr.CrashType == nil:
		return nil, missing("crash_type")
	case rr.Severity == nil:
		return nil, missing("severity")
	case rr.Confidence == nil:
		return nil, missing("confidence")
	case rr.RootCause == nil:
		return nil, missing("root_cause")
	case rr.DetailedAnalysis == nil:
		return nil, missing("detailed_analysis")
	case rr.AffectedSubsystem == nil:
		return nil, missing("affected_subsystem")
	case rr.ProbableTrigger == nil:
		return nil, missing("probable_trigger")
	case rr.SuggestedFixes == nil:
		return nil, missing("suggested_fixes")
	case rr.RelatedIssues == nil:
		return nil, missing("related_issues")
	case rr.AnnotatedTrace == nil:
		return nil, missing("annotated_trace")
	}

	confidence, err := rr.Confidence.Int64()
	if err != nil {
		return nil, &SchemaError{Field: "confidence", Reason: "must be an integer"}
	}
	if confidence < 0 || confidence > 100 {
		return nil, &SchemaError{Field: "confidence", Reason: "must be in [0, 100]"}
	}

	report := &schemas.AnalysisReport{
		CrashType:         *rr.CrashType,
		Severity:          *rr.Severity,
		Confidence:        int(confidence),
		RootCause:         *rr.RootCause,
		DetailedAnalysis:  *rr.DetailedAnalysis,
		AffectedSubsystem: *rr.AffectedSubsystem,
		ProbableTrigger:   *rr.ProbableTrigger,
		SuggestedFixes:    *rr.SuggestedFixes,
		RelatedIssues:     *rr.RelatedIssues,
		AnnotatedTrace:    *rr.AnnotatedTrace,
	}

	for i := range report.RelatedIssues {
		if report.RelatedIssues[i].URL == "" {
			report.RelatedIssues[i].URL = "#"
		}
	}

	return report, nil
}

func missing(field string) error {
	return &SchemaError{Field: field, Reason: "is missing"}
}
