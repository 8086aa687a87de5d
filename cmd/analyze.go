package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/analyzer"
	"github.com/crashlens/crashlens/internal/llmclient"
	"github.com/crashlens/crashlens/internal/observability"
)

var (
	analyzeKernelVersion string
	analyzeDistro        string
	analyzeContext       string
)

// analyzeCmd performs a one-shot analysis of a log file and prints the report
// as JSON, bypassing the HTTP server.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <logfile>",
	Short: "Analyze a kernel crash log file and print the structured report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer observability.Sync()

		logText, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read log file: %w", err)
		}

		logger := observability.GetLogger()
		llm, err := llmclient.NewClient(cfg.LLM, logger)
		if err != nil {
			return err
		}
		defer llm.Close()

		a := analyzer.New(llm, logger, analyzer.Options{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})

		report, err := a.Analyze(cmd.Context(), schemas.AnalyzeRequest{
			LogText:           string(logText),
			KernelVersion:     analyzeKernelVersion,
			Distro:            analyzeDistro,
			AdditionalContext: analyzeContext,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeKernelVersion, "kernel-version", "", "kernel version the log came from")
	analyzeCmd.Flags().StringVar(&analyzeDistro, "distro", "", "distribution the log came from")
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "", "additional free-form context for the model")
	rootCmd.AddCommand(analyzeCmd)
}
