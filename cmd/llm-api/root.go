package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/config"
	logpkg "github.com/JIG555ERA/llm-api/internal/logger"
	"github.com/JIG555ERA/llm-api/internal/version"
)

var (
	envName  string
	logLevel string
	dotEnv   string
)

var rootCmd = &cobra.Command{
	Use:   "llm-api",
	Short: "Catalog-grounded book and author answer engine",
	Long: `llm-api answers free-text questions about a book catalog. It ranks catalog
items against the query, classifies the intent and composes a grounded answer,
optionally enriched by public book sources and an LLM.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", "", "config environment (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().StringVar(&dotEnv, "dotenv", ".env", "dotenv file loaded before the config")
}

// loadRuntime loads .env, the config for the selected environment and the logger.
func loadRuntime() (config.Config, string, *zap.Logger, error) {
	if err := config.LoadDotEnv(dotEnv); err != nil {
		return config.Config{}, "", nil, fmt.Errorf("load dotenv: %w", err)
	}

	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return config.Config{}, "", nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, env, logger, nil
}
