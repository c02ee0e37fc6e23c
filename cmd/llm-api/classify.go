package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [query]",
	Short: "Print the intent decision for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

type modeScore struct {
	Mode  string  `json:"mode"`
	Score float64 `json:"score"`
}

type classifyOutput struct {
	Mode       string      `json:"mode"`
	Confidence float64     `json:"confidence"`
	Path       string      `json:"path"`
	Scores     []modeScore `json:"scores,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, _, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer a.Close()

	d := a.classifier.Classify(cmd.Context(), strings.Join(args, " "))
	out := classifyOutput{
		Mode:       string(d.Mode),
		Confidence: d.Confidence,
		Path:       string(d.Path),
	}
	for _, s := range d.Scores {
		out.Scores = append(out.Scores, modeScore{Mode: string(s.Mode), Score: s.Score})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
