package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/model"
)

const transactionColumns = `id, user_id, date, type, amount, category, payment_method, description, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// SaveTransaction inserts a transaction for userID, filling an id and defaults when missing.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, userID string, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}

	txn.EnsureDefaults()
	txn.UserID = userID
	if err := validateTransaction(txn); err != nil {
		return err
	}

	return insertTransaction(ctx, s.db, txn)
}

// ListTransactions returns the user's transactions ordered by date, then creation time.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY date, created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetTransaction returns a single transaction owned by userID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND id = ?
	`, userID, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateTransaction overwrites the stored fields of an existing transaction.
// The creation time is preserved.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, userID string, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.PaymentMethod == "" {
		txn.PaymentMethod = model.PaymentWallet
	}
	txn.UserID = userID
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, type = ?, amount = ?, category = ?, payment_method = ?, description = ?
		WHERE user_id = ? AND id = ?
	`, txn.Date.Format(model.DateLayout), string(txn.Type), amountValue(txn.Amount),
		txn.Category, string(txn.PaymentMethod), txn.Description, userID, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireAffected(result, "transaction "+txn.ID)
}

// DeleteTransaction removes a transaction owned by userID.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return requireAffected(result, "transaction "+id)
}

// ReplaceTransactions swaps the user's whole transaction list for the given one.
// Concurrent replacements are serialized and the last writer wins.
func (s *SQLiteStorage) ReplaceTransactions(ctx context.Context, userID string, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	for i := range transactions {
		transactions[i].EnsureDefaults()
		transactions[i].UserID = userID
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		for i := range transactions {
			if err := insertTransaction(ctx, tx, &transactions[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ImportTransactions inserts transactions for userID, skipping ids that already exist.
// It returns the number of rows actually inserted.
func (s *SQLiteStorage) ImportTransactions(ctx context.Context, userID string, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	for i := range transactions {
		transactions[i].EnsureDefaults()
		transactions[i].UserID = userID
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range transactions {
			result, execErr := stmt.ExecContext(ctx, transactionArgs(&transactions[i])...)
			if execErr != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", transactions[i].ID, execErr)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertTransaction(ctx context.Context, db execer, txn *model.Transaction) error {
	_, err := db.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transactionArgs(txn)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func transactionArgs(txn *model.Transaction) []any {
	return []any{
		txn.ID,
		txn.UserID,
		txn.Date.Format(model.DateLayout),
		string(txn.Type),
		amountValue(txn.Amount),
		txn.Category,
		string(txn.PaymentMethod),
		txn.Description,
		txn.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// amountValue stores non-numeric amounts as NULL so they stay excluded after a round trip.
func amountValue(a model.Amount) any {
	if !a.Valid {
		return nil
	}
	return a.Value
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn           model.Transaction
		date, created string
		typ, method   string
		amount        sql.NullFloat64
	)
	if err := row.Scan(&txn.ID, &txn.UserID, &date, &typ, &amount, &txn.Category, &method, &txn.Description, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return txn, err
		}
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsedDate, err := model.ParseDate(date)
	if err != nil {
		return txn, fmt.Errorf("transaction %s: %w", txn.ID, err)
	}
	txn.Date = parsedDate
	txn.Type = model.TransactionType(typ)
	txn.PaymentMethod = model.PaymentMethod(method)
	if amount.Valid {
		txn.Amount = model.NewAmount(amount.Float64)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
		txn.CreatedAt = ts
	}
	return txn, nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}
