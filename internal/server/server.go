// Package server exposes the WealthEase HTTP API: AI analysis and chatbot endpoints,
// the per-user transaction store, analytics summaries and login.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/auth"
	"github.com/Veraticus/wealthease/internal/model"
)

// Analyzer runs AI and local analyses and chatbot extraction.
type Analyzer interface {
	AIConfigured() bool
	Analyze(ctx context.Context, userKey, name string, txns []model.Transaction) (*analysis.Report, error)
	AnalyzeLocal(name string, txns []model.Transaction) *analysis.Report
	AnalyzeWithFallback(ctx context.Context, userKey, name string, txns []model.Transaction) (*analysis.Report, error)
	Extract(ctx context.Context, message string) (*analysis.ChatResult, error)
}

// Store persists users and their transactions.
type Store interface {
	FindOrCreateUser(ctx context.Context, user *model.User) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, name, email string) (*model.User, error)
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	SaveTransaction(ctx context.Context, userID string, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, userID string, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	ReplaceTransactions(ctx context.Context, userID string, txns []model.Transaction) error
}

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	Issue(user *model.User) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// Limit allows Requests per Window for each client address.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	AllowedOrigin   string
	AnalysisLimit   Limit
	ChatLimit       Limit
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// Debug adds upstream error details to 500 responses.
	Debug bool
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":3001",
		AllowedOrigin:   "*",
		AnalysisLimit:   Limit{Requests: 10, Window: 15 * time.Minute},
		ChatLimit:       Limit{Requests: 20, Window: 5 * time.Minute},
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
}

// Deps contains all dependencies required by the server.
type Deps struct {
	Analyzer Analyzer
	Store    Store
	Tokens   Tokens
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Analyzer == nil {
		return fmt.Errorf("analyzer dependency is required")
	}
	if d.Store == nil {
		return fmt.Errorf("store dependency is required")
	}
	if d.Tokens == nil {
		return fmt.Errorf("tokens dependency is required")
	}
	return nil
}

// Server is the WealthEase HTTP API.
type Server struct {
	deps        Deps
	handler     http.Handler
	analysisIPs *limiterRegistry
	chatIPs     *limiterRegistry
	cfg         Config
}

// New creates a server with the provided dependencies.
func New(deps Deps, cfg Config) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	defaults := DefaultConfig()
	if cfg.AnalysisLimit.Requests <= 0 || cfg.AnalysisLimit.Window <= 0 {
		cfg.AnalysisLimit = defaults.AnalysisLimit
	}
	if cfg.ChatLimit.Requests <= 0 || cfg.ChatLimit.Window <= 0 {
		cfg.ChatLimit = defaults.ChatLimit
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}

	s := &Server{
		deps:        deps,
		cfg:         cfg,
		analysisIPs: newLimiterRegistry(cfg.AnalysisLimit, deps.Clock),
		chatIPs:     newLimiterRegistry(cfg.ChatLimit, deps.Clock),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Analyses wait on the model, so writes get more room than reads.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("WealthEase API server listening",
			"addr", s.cfg.Addr,
			"ai_configured", s.deps.Analyzer.AIConfigured())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	analyzeLimit := s.rateLimit(s.analysisIPs, "Too many AI analysis requests, please try again later.")
	chatLimit := s.rateLimit(s.chatIPs, "Too many chatbot requests, please try again later.")

	mux.Handle("POST /api/ai/analyze-transactions", analyzeLimit(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("POST /api/ai/chatbot", chatLimit(http.HandlerFunc(s.handleChatbot)))
	mux.HandleFunc("GET /api/ai/health", s.handleHealth)
	mux.HandleFunc("POST /api/ai/insights", s.handleInsights)

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	mux.Handle("GET /api/users/profile", s.requireAuth(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PUT /api/users/profile", s.requireAuth(http.HandlerFunc(s.handleUpdateProfile)))

	mux.Handle("GET /api/transactions", s.requireAuth(http.HandlerFunc(s.handleListTransactions)))
	mux.Handle("POST /api/transactions", s.requireAuth(http.HandlerFunc(s.handleCreateTransaction)))
	mux.Handle("PUT /api/transactions", s.requireAuth(http.HandlerFunc(s.handleReplaceTransactions)))
	mux.Handle("PUT /api/transactions/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateTransaction)))
	mux.Handle("DELETE /api/transactions/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteTransaction)))
	mux.Handle("POST /api/transactions/analyze", s.requireAuth(analyzeLimit(http.HandlerFunc(s.handleAnalyzeStored))))

	mux.Handle("GET /api/analytics", s.requireAuth(http.HandlerFunc(s.handleAnalytics)))
	mux.Handle("GET /api/analytics/{month}", s.requireAuth(http.HandlerFunc(s.handleAnalytics)))
	mux.Handle("GET /api/analytics/summary/categories", s.requireAuth(http.HandlerFunc(s.handleCategorySummary)))
	mux.Handle("GET /api/analytics/summary/income-expense", s.requireAuth(http.HandlerFunc(s.handleIncomeExpense)))

	return s.logRequests(s.recoverPanics(s.cors(s.optionalAuth(mux))))
}
