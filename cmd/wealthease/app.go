package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/config"
	"github.com/Veraticus/wealthease/internal/forecast"
	"github.com/Veraticus/wealthease/internal/llm"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/storage"
)

// defaultCLIUser owns transactions recorded from the command line.
const defaultCLIUser = "me@wealthease.local"

// initStorage opens the database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

// newAnalysisService builds the analyzer. Completers are left unset when no API key
// is configured so the service reports AI as unavailable.
func newAnalysisService(cfg *config.Config, clock func() time.Time) (*analysis.Service, error) {
	prompts, err := analysis.NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	deps := analysis.Deps{
		Prompts: prompts,
		Engine:  forecast.NewEngine(cfg.Forecast),
		Clock:   clock,
		Config:  cfg.AnalysisConfig(),
	}

	if cfg.AIConfigured() {
		analyst, err := llm.NewCompleter(cfg.LLMConfig(cfg.Analysis))
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis client: %w", err)
		}
		chat, err := llm.NewCompleter(cfg.LLMConfig(cfg.Chat))
		if err != nil {
			return nil, fmt.Errorf("failed to create chat client: %w", err)
		}
		deps.Analyst, deps.Chat = analyst, chat
	} else {
		slog.Warn("No LLM API key configured; AI analysis and chatbot are disabled",
			"provider", cfg.Analysis.Provider)
	}

	return analysis.NewService(deps)
}

// addUserFlag registers the --user flag shared by commands that touch the store.
func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", defaultCLIUser, "email of the user that owns the transactions")
}

// resolveUser finds or creates the user named by the --user flag.
func resolveUser(ctx context.Context, cmd *cobra.Command, store *storage.SQLiteStorage) (*model.User, error) {
	email, _ := cmd.Flags().GetString("user")
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, common.NewUserError("--user must not be empty", common.ErrInvalidInput)
	}

	return store.FindOrCreateUser(ctx, &model.User{Email: email, Provider: storage.ProviderLocal})
}
