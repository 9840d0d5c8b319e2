package main

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ticketgate/backend/internal/ai"
	"github.com/ticketgate/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "ticketgate",
	Short:         "Work-instruction tickets with an AI completeness gate",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reviewCmd, checklistsCmd)
}

// errRejected signals an NG verdict from the review command.
var errRejected = errors.New("instructions rejected")

func exitCode(err error) int {
	if errors.Is(err, errRejected) {
		return 2
	}
	rootCmd.PrintErrln("Error:", err)
	return 1
}

func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// newGenerator picks the text-generation backend named by LLM_PROVIDER.
func newGenerator(cfg config.Config) ai.Generator {
	switch cfg.LLMProvider {
	case "mock":
		return ai.MockGenerator{ModelVersion: "mock-v1"}
	case "anthropic":
		return ai.Anthropic{
			BaseURL:   cfg.LLMBaseURL,
			Model:     cfg.LLMModel,
			APIKey:    cfg.LLMAPIKey,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.LLMTimeout,
		}
	default:
		return ai.OpenAICompat{
			BaseURL:   cfg.LLMBaseURL,
			Model:     cfg.LLMModel,
			APIKey:    cfg.LLMAPIKey,
			MaxTokens: cfg.LLMMaxTokens,
			Timeout:   cfg.LLMTimeout,
		}
	}
}
