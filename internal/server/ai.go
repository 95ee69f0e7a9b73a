package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Veraticus/wealthease/internal/analysis"
	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/llm"
	"github.com/Veraticus/wealthease/internal/model"
)

// Client-facing messages.
const (
	msgInvalidTransactions = "Invalid transactions data"
	msgNoTransactions      = "No transactions to analyze"
	msgNotConfigured       = "OpenAI API key not configured"
	msgQuotaExceeded       = "OpenAI API quota exceeded. Please try again later."
	msgInvalidKey          = "Invalid OpenAI API key"
	msgAnalysisFailed      = "Failed to analyze transactions"
	msgMessageRequired     = "Message is required"
	msgChatFailed          = "An error occurred while processing your message. Please try again."
)

type analyzeRequest struct {
	Transactions json.RawMessage `json:"transactions"`
	UserProfile  struct {
		Name string `json:"name"`
	} `json:"userProfile"`
}

type reportResponse struct {
	Analysis    model.AnalysisResult `json:"analysis"`
	RawResponse string               `json:"rawResponse,omitempty"`
	Timestamp   string               `json:"timestamp"`
	Source      string               `json:"source"`
	UserProfile model.UserProfile    `json:"userProfile"`
	Insights    []analysis.Insight   `json:"insights"`
	Chart       analysis.Chart       `json:"chart"`
	Success     bool                 `json:"success"`
	Parsed      bool                 `json:"parsed"`
}

func newReportResponse(r *analysis.Report) reportResponse {
	return reportResponse{
		Success:     true,
		Analysis:    r.Result,
		RawResponse: r.RawResponse,
		Timestamp:   timestamp(r.Timestamp),
		Source:      r.Source,
		UserProfile: r.Profile,
		Insights:    r.Insights,
		Chart:       r.Chart,
		Parsed:      r.Parsed,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Data        model.ChatExtraction `json:"data"`
	Reply       string               `json:"reply"`
	Transaction model.Transaction    `json:"transaction"`
	Success     bool                 `json:"success"`
}

type healthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	OpenAIConfigured bool   `json:"openaiConfigured"`
}

// decodeTransactions requires a JSON array of transactions.
func decodeTransactions(raw json.RawMessage) ([]model.Transaction, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var txns []model.Transaction
	if err := json.Unmarshal(trimmed, &txns); err != nil {
		return nil, false
	}
	return txns, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidTransactions)
		return
	}

	txns, ok := decodeTransactions(req.Transactions)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidTransactions)
		return
	}
	if len(txns) == 0 {
		writeError(w, http.StatusBadRequest, msgNoTransactions)
		return
	}
	if !s.deps.Analyzer.AIConfigured() {
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	report, err := s.deps.Analyzer.Analyze(r.Context(), s.userKey(r), req.UserProfile.Name, txns)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNoTransactions):
		writeError(w, http.StatusBadRequest, msgNoTransactions)
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
	case errors.Is(err, llm.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, msgQuotaExceeded)
	case errors.Is(err, llm.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgInvalidKey)
	default:
		common.LogError(r.Context(), err, "AI analysis failed", nil)
		s.writeServerError(w, msgAnalysisFailed, err)
	}
}

// handleInsights runs the local, rule-based analysis. It never calls the model.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidTransactions)
		return
	}
	txns, ok := decodeTransactions(req.Transactions)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidTransactions)
		return
	}

	writeJSON(w, http.StatusOK, newReportResponse(s.deps.Analyzer.AnalyzeLocal(req.UserProfile.Name, txns)))
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, msgMessageRequired)
		return
	}

	res, err := s.deps.Analyzer.Extract(r.Context(), req.Message)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, chatResponse{
			Success:     true,
			Reply:       res.Reply,
			Data:        res.Data,
			Transaction: res.Transaction,
		})
	case errors.Is(err, common.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, msgMessageRequired)
	case errors.Is(err, analysis.ErrNoExtraction):
		// Extraction failures are a normal conversational outcome, not an HTTP error.
		writeJSON(w, http.StatusOK, errorResponse{Error: analysis.ExtractionFailureMessage})
	case errors.Is(err, llm.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
	case errors.Is(err, llm.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, msgQuotaExceeded)
	case errors.Is(err, llm.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgInvalidKey+".")
	default:
		common.LogError(r.Context(), err, "Chatbot request failed", nil)
		s.writeServerError(w, msgChatFailed, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		Timestamp:        timestamp(s.deps.Clock()),
		OpenAIConfigured: s.deps.Analyzer.AIConfigured(),
	})
}

// userKey scopes request de-duplication: the authenticated user, else the client address.
func (s *Server) userKey(r *http.Request) string {
	if claims := claimsFrom(r.Context()); claims != nil {
		return "user:" + claims.UserID()
	}
	return "ip:" + s.clientIP(r)
}
