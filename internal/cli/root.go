// Package cli is the command line front end: one-shot screening of a local
// file and role profile listing.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
)

const app = "resume-screener"

var (
	// Used for flags.
	cfgFile string
	verbose bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "resume-screener scores resumes against a hiring rubric with Gemini and OpenAI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (default: environment and .env only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json-log", "j", false, "json format for logging")
}

// setup loads configuration and a logger. Logging is silent unless asked
// for, so the report is the only thing on stdout.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if !verbose {
		return cfg, zap.NewNop(), nil
	}
	log, err := logger.New(jsonLog || cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
