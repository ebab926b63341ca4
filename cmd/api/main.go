package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/codereview/internal/config"
	"github.com/bryanwahyu/codereview/internal/logging"
)

const defaultConfigPath = "config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "codereview",
	Short: "LLM code review service",
	Long: `codereview sends source code to an OpenAI-compatible model, normalizes the
findings into typed issues and stores every analysis.

Without a subcommand it runs the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	path := defaultConfigPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", path, "Path to config.yaml (env CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing default file is not an error;
// defaults and environment variables are enough for local use.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && configPath == defaultConfigPath {
		return config.Parse(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	return cfg, nil
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
