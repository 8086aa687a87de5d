package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The wire format is a contract with the model prompt and any HTTP
// consumers, so the JSON tags are pinned down here.

func TestAnalyzeRequestJSONTags(t *testing.T) {
	req := AnalyzeRequest{
		LogText:           "BUG: unable to handle page fault",
		KernelVersion:     "6.8.0-45-generic",
		Distro:            "Ubuntu 24.04",
		AdditionalContext: "happens after resume from suspend",
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "log_text")
	assert.Contains(t, m, "kernel_version")
	assert.Contains(t, m, "distro")
	assert.Contains(t, m, "additional_context")
}

func TestAnalyzeRequestOptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(AnalyzeRequest{LogText: "Oops"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "log_text")
	assert.NotContains(t, m, "kernel_version")
	assert.NotContains(t, m, "distro")
	assert.NotContains(t, m, "additional_context")
}

func TestAnalysisReportJSONTags(t *testing.T) {
	report := AnalysisReport{
		CrashType:         "Oops",
		Severity:          "high",
		Confidence:        90,
		RootCause:         "NULL pointer dereference",
		DetailedAnalysis:  "The fault address is within the first page.",
		AffectedSubsystem: "memory management",
		ProbableTrigger:   "use-after-free on a slab object",
		SuggestedFixes:    []string{"update the kernel"},
		RelatedIssues:     []RelatedIssue{{ID: "CVE-2024-1086", Title: "nf_tables UAF", URL: "#"}},
		AnnotatedTrace:    []TraceFrame{{Func: "__kmalloc+0x1a/0x2c0", Note: "allocation site"}},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"crash_type", "severity", "confidence", "root_cause",
		"detailed_analysis", "affected_subsystem", "probable_trigger",
		"suggested_fixes", "related_issues", "annotated_trace",
	} {
		assert.Contains(t, m, key)
	}

	issues := m["related_issues"].([]any)
	issue := issues[0].(map[string]any)
	assert.Contains(t, issue, "id")
	assert.Contains(t, issue, "title")
	assert.Contains(t, issue, "url")

	frames := m["annotated_trace"].([]any)
	frame := frames[0].(map[string]any)
	assert.Contains(t, frame, "func")
	assert.Contains(t, frame, "note")
}

func TestKnownEnumTables(t *testing.T) {
	for _, ct := range []string{
		"Kernel Panic", "Oops", "OOM Kill", "Hung Task", "GPU Fault",
		"Filesystem Corruption", "Segfault", "Soft Lockup", "Hard Lockup", "Other",
	} {
		assert.True(t, KnownCrashTypes[ct], "crash type %q should be known", ct)
	}
	for _, sev := range []string{"low", "medium", "high", "critical"} {
		assert.True(t, KnownSeverities[sev], "severity %q should be known", sev)
	}
	assert.False(t, KnownCrashTypes["Kerploded"])
	assert.False(t, KnownSeverities["catastrophic"])
}
