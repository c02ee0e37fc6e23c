package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JIG555ERA/llm-api/internal/usecase/resolve"
)

var (
	askLimit       int
	askMaxTokens   int
	askTemperature float64
	askQuotes      bool
	askTakeaways   bool
	askSimilar     bool
	askSearchOnly  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "number of items (default: ranking.default_limit)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", resolve.DefaultMaxTokens, "answer length budget in words")
	askCmd.Flags().Float64VarP(&askTemperature, "temperature", "t", resolve.DefaultTemperature, "sampling temperature")
	askCmd.Flags().BoolVar(&askQuotes, "quotes", false, "include a quotes section")
	askCmd.Flags().BoolVar(&askTakeaways, "takeaways", false, "include a takeaways section")
	askCmd.Flags().BoolVar(&askSimilar, "similar", false, "include a similar-books section")
	askCmd.Flags().BoolVar(&askSearchOnly, "search", false, "rank only, without composing an answer")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Result         string                  `json:"result,omitempty"`
	TokenUsage     int                     `json:"token_usage,omitempty"`
	Mode           string                  `json:"mode"`
	Confidence     float64                 `json:"confidence"`
	IntentPath     string                  `json:"intent_path"`
	Items          any                     `json:"items"`
	MatchedAuthors []resolve.MatchedAuthor `json:"matched_authors,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	q := strings.Join(args, " ")
	var limit *int
	if cmd.Flags().Changed("limit") {
		limit = &askLimit
	}

	var out askOutput
	if askSearchOnly {
		res, err := a.resolver.Search(cmd.Context(), q, limit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		out = askOutput{
			Mode:       string(res.Decision.Mode),
			Confidence: res.Decision.Confidence,
			IntentPath: string(res.Decision.Path),
			Items:      res.Items,
		}
	} else {
		res, err := a.resolver.Resolve(cmd.Context(), q, resolve.Options{
			MaxTokens:        &askMaxTokens,
			Temperature:      &askTemperature,
			Limit:            limit,
			IncludeQuotes:    askQuotes,
			IncludeTakeaways: askTakeaways,
			IncludeSimilar:   askSimilar,
		})
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
		out = askOutput{
			Result:         res.Text,
			TokenUsage:     res.TokenUsage,
			Mode:           string(res.Display.Mode),
			Confidence:     res.Decision.Confidence,
			IntentPath:     string(res.Decision.Path),
			Items:          res.Items,
			MatchedAuthors: res.Authors,
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
