// Package cmd defines the crashlens command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/crashlens/crashlens/internal/config"
	"github.com/crashlens/crashlens/internal/observability"
)

var (
	cfgFile string
	// cfg is populated by the root PersistentPreRunE and shared by subcommands.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "crashlens",
	Short:   "Crashlens analyzes kernel crash logs with an LLM and returns a structured report.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			// Initialize a fallback logger so the error is still visible in
			// structured form.
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "crashlens"})
			return err
		}
		cfg = loaded

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Info("Starting crashlens",
			zap.String("version", Version),
			zap.String("provider", string(cfg.LLM.Provider)),
			zap.String("model", cfg.LLM.Model),
		)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it with the
// given context.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads the config file (explicit or ./config.yaml if present),
// environment variables, and defaults.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			// No config file; proceed with defaults and env vars.
		}
	}

	return config.NewConfigFromViper(v)
}
