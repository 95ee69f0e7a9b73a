// Package analysis turns transaction lists into financial analyses, either by asking a
// language model or by computing a local, rule-based narrative. It also extracts
// transactions from chatbot messages.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/forecast"
	"github.com/Veraticus/wealthease/internal/llm"
	"github.com/Veraticus/wealthease/internal/metrics"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/trend"
)

// Report sources.
const (
	SourceAI    = "ai"
	SourceLocal = "local"
)

// Chart sizes.
const (
	HistoryDays    = 30
	ProjectionDays = 7
)

// Config holds generation settings for each kind of model call.
type Config struct {
	// AnalysisMaxTokens bounds the analysis completion.
	AnalysisMaxTokens int
	// AnalysisTemperature is the sampling temperature for analysis.
	AnalysisTemperature float64
	// ChatMaxTokens bounds the chatbot extraction completion.
	ChatMaxTokens int
	// ChatTemperature is the sampling temperature for extraction.
	ChatTemperature float64
	// RequestTimeout bounds a shared analysis call once its callers have gone away.
	RequestTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		AnalysisMaxTokens:   1500,
		AnalysisTemperature: 0.7,
		ChatMaxTokens:       500,
		ChatTemperature:     0.3,
		RequestTimeout:      2 * time.Minute,
	}
}

// Deps contains all dependencies required by the service.
type Deps struct {
	// Analyst answers analysis prompts. Nil disables AI analysis.
	Analyst llm.Completer
	// Chat answers extraction prompts. Nil disables the chatbot.
	Chat llm.Completer
	// Prompts renders prompt templates.
	Prompts *PromptBuilder
	// Engine computes local forecasts and scores.
	Engine *forecast.Engine
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Config defaults to DefaultConfig.
	Config Config
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Prompts == nil {
		return fmt.Errorf("prompt builder dependency is required")
	}
	if d.Engine == nil {
		return fmt.Errorf("forecast engine dependency is required")
	}
	return nil
}

// Service runs analyses and chatbot extraction.
type Service struct {
	deps  Deps
	group singleflight.Group
}

// NewService creates a service with the provided dependencies.
func NewService(deps Deps) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Config == (Config{}) {
		deps.Config = DefaultConfig()
	}
	return &Service{deps: deps}, nil
}

// Chart is balance history plus a short projection.
type Chart struct {
	History    []metrics.BalancePoint `json:"history"`
	Projection []trend.Projection     `json:"projection"`
}

// Report is the outcome of one analysis.
type Report struct {
	Timestamp   time.Time            `json:"timestamp"`
	Source      string               `json:"source"`
	RawResponse string               `json:"rawResponse,omitempty"`
	Profile     model.UserProfile    `json:"userProfile"`
	Result      model.AnalysisResult `json:"analysis"`
	Insights    []Insight            `json:"insights"`
	Chart       Chart                `json:"chart"`
	Parsed      bool                 `json:"parsed"`
}

// ChatResult is a successfully extracted chatbot transaction.
type ChatResult struct {
	Reply       string               `json:"reply"`
	Data        model.ChatExtraction `json:"data"`
	Transaction model.Transaction    `json:"transaction"`
}

// AIConfigured reports whether AI analysis is available.
func (s *Service) AIConfigured() bool {
	return s.deps.Analyst != nil
}

// ChatConfigured reports whether chatbot extraction is available.
func (s *Service) ChatConfigured() bool {
	return s.deps.Chat != nil
}

// Analyze asks the model for an analysis of txns. Identical concurrent requests for
// the same userKey share one upstream call. Unparseable output yields the fallback
// result with Parsed=false rather than an error.
func (s *Service) Analyze(ctx context.Context, userKey, name string, txns []model.Transaction) (*Report, error) {
	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	if s.deps.Analyst == nil {
		return nil, llm.ErrNotConfigured
	}

	now := s.deps.Clock()
	data := NewPromptData(name, txns, now)

	prompt, err := s.deps.Prompts.BuildAnalysisPrompt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis prompt: %w", err)
	}

	req := llm.Request{
		System:      AnalysisSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   s.deps.Config.AnalysisMaxTokens,
		Temperature: s.deps.Config.AnalysisTemperature,
	}

	common.LogDebug(ctx, "Sending analysis request", common.Fields{
		"user":         userKey,
		"transactions": len(txns),
	})

	// The shared call outlives any one caller; each caller still stops waiting on its own ctx.
	ch := s.group.DoChan(flightKey(userKey, prompt), func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if timeout := s.deps.Config.RequestTimeout; timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, timeout)
			defer cancel()
		}
		return s.deps.Analyst.Complete(callCtx, req)
	})

	var raw string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("analysis request failed: %w", res.Err)
		}
		raw, _ = res.Val.(string)
		if res.Shared {
			common.LogDebug(ctx, "Shared in-flight analysis", common.Fields{"user": userKey})
		}
	}

	result, parsed := ParseResponse(raw)
	if !parsed {
		common.LogInfo(ctx, "AI response could not be parsed; using fallback", common.Fields{"user": userKey})
	}

	return &Report{
		Timestamp:   now.UTC(),
		Source:      SourceAI,
		RawResponse: raw,
		Profile:     data.Profile,
		Result:      result,
		Insights:    Insights(result),
		Chart:       chart(txns, data.Profile.TotalBalance, now),
		Parsed:      parsed,
	}, nil
}

// AnalyzeLocal computes the rule-based analysis without calling a model.
func (s *Service) AnalyzeLocal(name string, txns []model.Transaction) *Report {
	now := s.deps.Clock()
	summary := metrics.Compute(txns, now)
	profile := summary.Profile(name)

	outcome := s.deps.Engine.Evaluate(summary, trend.Estimate(txns))
	in := NewNarrativeInput(summary, profile, txns, now)

	predictions := outcome.Predictions
	predictions.Summary = LocalPredictionSummary(in, predictions)

	result := model.AnalysisResult{
		Analysis:        LocalAnalysis(in),
		Recommendations: LocalRecommendations(in),
		Warnings:        LocalWarnings(in),
		Predictions:     predictions,
		Score:           outcome.Score,
	}

	return &Report{
		Timestamp: now.UTC(),
		Source:    SourceLocal,
		Profile:   profile,
		Result:    result,
		Insights:  Insights(result),
		Chart:     chart(txns, profile.TotalBalance, now),
		Parsed:    true,
	}
}

// AnalyzeWithFallback tries the model first and falls back to the local analysis on
// upstream failure. Input errors and cancellation are returned as is.
func (s *Service) AnalyzeWithFallback(ctx context.Context, userKey, name string, txns []model.Transaction) (*Report, error) {
	report, err := s.Analyze(ctx, userKey, name, txns)
	if err == nil {
		return report, nil
	}
	if errors.Is(err, common.ErrNoTransactions) || ctx.Err() != nil {
		return nil, err
	}

	common.Logger(ctx).Warn("AI analysis unavailable, using local analysis", "user", userKey, "error", err)
	return s.AnalyzeLocal(name, txns), nil
}

// Extract asks the chat model to pull one transaction out of message.
func (s *Service) Extract(ctx context.Context, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, common.ErrEmptyMessage
	}
	if s.deps.Chat == nil {
		return nil, llm.ErrNotConfigured
	}

	now := s.deps.Clock()
	system, err := s.deps.Prompts.BuildExtractionPrompt(now)
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction prompt: %w", err)
	}

	raw, err := s.deps.Chat.Complete(ctx, llm.Request{
		System:      system,
		Prompt:      message,
		MaxTokens:   s.deps.Config.ChatMaxTokens,
		Temperature: s.deps.Config.ChatTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chatbot request failed: %w", err)
	}

	ex, err := ParseExtraction(raw, now)
	if err != nil {
		return nil, err
	}

	txn, err := ExtractionTransaction(ex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoExtraction, err)
	}

	return &ChatResult{
		Reply:       ChatReply(ex),
		Data:        ex,
		Transaction: txn,
	}, nil
}

func chart(txns []model.Transaction, balance float64, now time.Time) Chart {
	return Chart{
		History:    metrics.History(txns, now, HistoryDays),
		Projection: trend.Forecast(balance, now, ProjectionDays),
	}
}

func flightKey(userKey, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return userKey + ":" + hex.EncodeToString(sum[:])
}
