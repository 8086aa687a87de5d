// Package analyzer implements the prompt-construction and response-validation
// pipeline around an injected completion provider. It performs no log parsing
// of its own; the analysis itself is delegated entirely to the model.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
)

// Options bound the generation parameters used for every analysis call.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Analyzer turns an AnalyzeRequest into a validated AnalysisReport via one
// round trip to the completion provider. One Analyzer serves many concurrent
// requests; it holds no per-request state.
type Analyzer struct {
	llm    schemas.CompletionClient
	logger *zap.Logger
	opts   Options
}

// New constructs an Analyzer around an injected completion client.
func New(llm schemas.CompletionClient, logger *zap.Logger, opts Options) *Analyzer {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &Analyzer{
		llm:    llm,
		logger: logger.Named("analyzer"),
		opts:   opts,
	}
}

// Analyze runs the full pipeline: input validation, prompt construction, the
// provider call, and response validation. All failures are terminal for the
// request; nothing is retried or cached.
func (a *Analyzer) Analyze(ctx context.Context, req schemas.AnalyzeRequest) (*schemas.AnalysisReport, error) {
	if strings.TrimSpace(req.LogText) == "" {
		return nil, ErrEmptyLog
	}

	// Each analysis gets its own ID so the provider call and the validation
	// outcome can be correlated across log lines.
	logger := a.logger.With(zap.String("analysis_id", uuid.NewString()))

	creq := schemas.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildUserPrompt(req),
		Options: schemas.CompletionOptions{
			Temperature:     a.opts.Temperature,
			MaxTokens:       a.opts.MaxTokens,
			ForceJSONFormat: true,
		},
	}

	startTime := time.Now()
	raw, err := a.llm.Complete(ctx, creq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	report, err := ParseReport(raw)
	if err != nil {
		logger.Warn("Model reply rejected",
			zap.Error(err),
			zap.Int("reply_bytes", len(raw)),
		)
		return nil, err
	}

	if !schemas.KnownCrashTypes[report.CrashType] {
		logger.Warn("Model emitted unrecognized crash_type; passing through",
			zap.String("crash_type", report.CrashType))
	}
	if !schemas.KnownSeverities[report.Severity] {
		logger.Warn("Model emitted unrecognized severity; passing through",
			zap.String("severity", report.Severity))
	}

	logger.Info("Analysis complete",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("crash_type", report.CrashType),
		zap.String("severity", report.Severity),
		zap.Int("confidence", report.Confidence),
		zap.Int("trace_frames", len(report.AnnotatedTrace)),
	)

	return report, nil
}
