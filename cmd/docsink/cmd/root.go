// Package cmd implements the docsink command line.
package cmd

import (
	"fmt"

	"github.com/exacode/docsink"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string // config file path
	dataDir  string // overrides host from the config
	logJSON  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "docsink",
	Short: "Inspect and manage stored log events",
	Long: `docsink reads and maintains the collection a docsink appender writes to.

Examples:
  # show the ten newest events
  docsink tail -n 10

  # events logged at an exact instant
  docsink at --timestamp 2025-10-20T12:00:00.000Z

  # keep the collection under 8 MiB
  docsink cap --size 8388608`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./docsink.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "host", "", "data directory, overrides the config")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write status logs as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "status log level")
}

func loadConfig() (docsink.Config, error) {
	cfg, err := docsink.LoadConfig(cfgFile)
	if err != nil {
		return docsink.Config{}, err
	}
	if dataDir != "" {
		cfg.Host = dataDir
	}
	return cfg, nil
}

func statusLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level : %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(level)
	if logJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// startAppender opens the configured collection. The caller stops the returned appender.
// Unless enforceCap is set the collection keeps the options it already has.
func startAppender(cmd *cobra.Command, enforceCap bool) (*docsink.Appender, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !enforceCap {
		cfg.Capped = false
	}
	logger, err := statusLogger(cmd)
	if err != nil {
		return nil, err
	}
	appender, err := docsink.New(docsink.WithConfig(cfg), docsink.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := appender.Start(); err != nil {
		return nil, err
	}
	return appender, nil
}
