package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
	"github.com/bryanwahyu/codereview/internal/infra/ai/openai"
)

var analyzeLanguage string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze one source file and print the result as JSON",
	Long: `Analyze one source file with the configured model and print the analysis
envelope to stdout. Nothing is stored.

Examples:
  codereview analyze main.go --language go
  GROQ_API_KEY=... codereview analyze src/app.js`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "Language of the file (default: from the file extension, else javascript)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	o := newOrchestrator(cfg, openai.NewClient(cfg.AI), logger)
	res, err := o.Analyze(cmd.Context(), domain.Request{
		Code:     string(code),
		Language: analyzeLanguage,
		Filename: filepath.Base(args[0]),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
