package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/wealthease/internal/auth"
	"github.com/Veraticus/wealthease/internal/config"
	"github.com/Veraticus/wealthease/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the WealthEase HTTP API: AI analysis, chatbot, per-user transactions,
analytics and login.

The API key is read from OPENAI_API_KEY (or ANTHROPIC_API_KEY with llm.provider set to
anthropic). Without a key the AI endpoints answer with a configuration error.`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "listen port (default: PORT or 3001)")
	cmd.Flags().Bool("debug", false, "include error details in 500 responses")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	analyzer, err := newAnalysisService(cfg, time.Now)
	if err != nil {
		return err
	}

	tokens, err := newTokenIssuer(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Analyzer: analyzer,
		Store:    store,
		Tokens:   tokens,
	}, cfg.ServerConfig())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("💸 WealthEase API starting",
		"port", cfg.Port,
		"database", store.Path(),
		"ai_configured", analyzer.AIConfigured(),
		"model", cfg.Analysis.Model)

	return srv.Run(ctx)
}

// newTokenIssuer uses the configured secret or, when none is set, a random one that
// lives as long as the process.
func newTokenIssuer(cfg *config.Config) (*auth.Issuer, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		slog.Warn("No JWT secret configured; tokens will not survive a restart",
			"hint", "set WEALTHEASE_JWT_SECRET")
	}
	return auth.NewIssuer(secret, cfg.TokenTTL)
}
