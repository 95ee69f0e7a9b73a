package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/storage"
)

type pagination struct {
	CurrentPage       int  `json:"currentPage"`
	TotalPages        int  `json:"totalPages"`
	TotalTransactions int  `json:"totalTransactions"`
	HasNext           bool `json:"hasNext"`
	HasPrev           bool `json:"hasPrev"`
}

type transactionPage struct {
	Transactions []model.Transaction `json:"transactions"`
	Pagination   pagination          `json:"pagination"`
}

type replaceRequest struct {
	Transactions []model.Transaction `json:"transactions"`
}

// handleListTransactions lists the caller's transactions, optionally filtered by
// ?category= and paged by ?page= and ?limit=. Without a limit every row is returned.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.loadTransactions(w, r)
	if !ok {
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := make([]model.Transaction, 0, len(txns))
		for _, t := range txns {
			if t.Category == category {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	page := positiveInt(r.URL.Query().Get("page"), 1)
	limit := positiveInt(r.URL.Query().Get("limit"), len(txns))
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Data: paginate(txns, page, limit)})
}

func paginate(txns []model.Transaction, page, limit int) transactionPage {
	total := len(txns)
	if limit <= 0 {
		return transactionPage{
			Transactions: []model.Transaction{},
			Pagination:   pagination{CurrentPage: page},
		}
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// Pages beyond the data are empty; checking first keeps (page-1)*limit from overflowing.
	start, end := total, total
	if page-1 <= total/limit {
		start = (page - 1) * limit
		end = min(start+limit, total)
		start = min(start, total)
	}

	return transactionPage{
		Transactions: txns[start:end],
		Pagination: pagination{
			CurrentPage:       page,
			TotalPages:        totalPages,
			TotalTransactions: total,
			HasNext:           end < total,
			HasPrev:           start > 0,
		},
	}
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var txn model.Transaction
	if err := s.decodeJSON(w, r, &txn); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction data")
		return
	}
	txn.ID = ""
	if txn.Date.IsZero() {
		txn.Date = model.Day(s.deps.Clock())
	}

	if err := s.deps.Store.SaveTransaction(r.Context(), claims.UserID(), &txn); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Success: true,
		Message: "Transaction added successfully",
		Data:    txn,
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var txn model.Transaction
	if err := s.decodeJSON(w, r, &txn); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction data")
		return
	}
	txn.ID = r.PathValue("id")

	if err := s.deps.Store.UpdateTransaction(r.Context(), claims.UserID(), &txn); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Transaction updated successfully",
		Data:    txn,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := s.deps.Store.DeleteTransaction(r.Context(), claims.UserID(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Transaction deleted successfully"})
}

// handleReplaceTransactions stores the posted list as the caller's whole transaction
// list. The last writer wins.
func (s *Server) handleReplaceTransactions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req replaceRequest
	if err := s.decodeJSON(w, r, &req); err != nil || req.Transactions == nil {
		writeError(w, http.StatusBadRequest, msgInvalidTransactions)
		return
	}

	if err := s.deps.Store.ReplaceTransactions(r.Context(), claims.UserID(), req.Transactions); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Transactions saved successfully",
		Data:    map[string]int{"count": len(req.Transactions)},
	})
}

// handleAnalyzeStored analyzes the caller's stored transactions, falling back to the
// local analysis when the model is unavailable.
func (s *Server) handleAnalyzeStored(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	txns, ok := s.loadTransactions(w, r)
	if !ok {
		return
	}
	if len(txns) == 0 {
		writeError(w, http.StatusBadRequest, msgNoTransactions)
		return
	}

	report, err := s.deps.Analyzer.AnalyzeWithFallback(r.Context(), s.userKey(r), claims.Name, txns)
	if err != nil {
		s.writeAnalysisError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) loadTransactions(w http.ResponseWriter, r *http.Request) ([]model.Transaction, bool) {
	claims := claimsFrom(r.Context())
	txns, err := s.deps.Store.ListTransactions(r.Context(), claims.UserID())
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	return txns, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, storage.ErrInvalidTransaction),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, common.ErrDuplicateEntry):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		common.LogError(r.Context(), err, "Store operation failed", nil)
		s.writeServerError(w, "Internal server error", err)
	}
}
