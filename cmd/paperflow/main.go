// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperflow CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paperflow/internal/secrets"
	"github.com/pdiddy/paperflow/internal/textgen"
	"github.com/pdiddy/paperflow/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// logger is the process-wide structured logger, configured in the root
// PersistentPreRunE.
var logger = zap.NewNop()

// rootCmd is the base command for the paperflow CLI.
var rootCmd = &cobra.Command{
	Use:   "paperflow",
	Short: "Turn academic papers into implementation plans",
	Long: `paperflow drives a pre-extracted academic paper through a pipeline that
builds a concept knowledge graph, generates executable specifications for
its algorithms, matches paper concepts to code implementations, and
reports implementation gaps.

Each pipeline stage is a subcommand: ingest, graph, specs, trace, and
report. The run command executes the full workflow end to end.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperflow.yaml or ~/.config/paperflow/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("sessions-dir", "", "base directory for session artifacts (default: sessions)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperflow"))
		}
	}

	viper.SetEnvPrefix("PAPERFLOW")
	viper.AutomaticEnv()

	viper.SetDefault("sessions_dir", "sessions")
	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ai.max_retries", 3)
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("trace.min_confidence", 0.5)
	viper.SetDefault("generation.language", "go")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// sessionConfig resolves the sessions directory from flag, then config.
func sessionConfig(cmd *cobra.Command) types.SessionConfig {
	dir, _ := cmd.Flags().GetString("sessions-dir")
	if dir == "" {
		dir = viper.GetString("sessions_dir")
	}
	return types.SessionConfig{SessionsDir: dir}
}

// aiConfig resolves the generation settings. The API key comes from the
// PAPERFLOW_ANTHROPIC_API_KEY environment variable or the
// .secrets/anthropic-api-key file.
func aiConfig() types.AIConfig {
	key := loadedSecrets.Get(secrets.AnthropicAPIKey, viper.GetString("anthropic_api_key"))
	timeout := viper.GetDuration("ai.timeout")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return types.AIConfig{
		Model:      viper.GetString("ai.model"),
		APIKey:     key,
		MaxRetries: viper.GetInt("ai.max_retries"),
		Timeout:    timeout,
	}
}

// textGenerator returns the configured generation backend, or nil when no
// API key is available. A nil generator selects the deterministic
// heuristic path in every stage.
func textGenerator(cfg types.AIConfig) textgen.Generator {
	if cfg.APIKey == "" {
		logger.Info("no API key configured; using heuristic generation")
		return nil
	}
	return &textgen.ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
