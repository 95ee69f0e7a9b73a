package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/model"
)

const userColumns = `id, name, email, provider, COALESCE(google_id, ''), COALESCE(avatar, ''), created_at, updated_at`

// ProviderLocal marks accounts created with an email login.
const ProviderLocal = "local"

// FindOrCreateUser returns the user matching the Google id or email, creating one otherwise.
// Matching an existing email links the Google id and avatar when they were missing.
func (s *SQLiteStorage) FindOrCreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(user.Email))
	var found *model.User

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := findUser(ctx, tx, user.GoogleID, email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			if existing.GoogleID == "" && user.GoogleID != "" {
				existing.GoogleID = user.GoogleID
				existing.Provider = user.Provider
				if existing.Avatar == "" {
					existing.Avatar = user.Avatar
				}
				existing.UpdatedAt = now
				if _, err := tx.ExecContext(ctx, `
					UPDATE users SET google_id = ?, provider = ?, avatar = ?, updated_at = ? WHERE id = ?
				`, existing.GoogleID, existing.Provider, existing.Avatar, now.Format(time.RFC3339Nano), existing.ID); err != nil {
					return fmt.Errorf("failed to link user: %w", err)
				}
			}
			found = existing
			return nil
		}

		created, err := insertUser(ctx, tx, user, email, now)
		if err != nil {
			return err
		}
		found = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateUser registers a new account, failing with common.ErrDuplicateEntry when the
// email is already taken.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(user.Email))
	var created *model.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = insertUser(ctx, tx, user, email, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateUserProfile changes the name and email of user id. Empty values keep the
// stored ones.
func (s *SQLiteStorage) UpdateUserProfile(ctx context.Context, id, name, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var updated *model.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if name = strings.TrimSpace(name); name != "" {
			user.Name = name
		}
		if strings.TrimSpace(email) != "" {
			candidate := &model.User{Email: email}
			if err := validateUser(candidate); err != nil {
				return err
			}
			user.Email = strings.ToLower(strings.TrimSpace(email))
		}
		user.UpdatedAt = time.Now().UTC()

		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?
		`, user.Name, user.Email, user.UpdatedAt.Format(time.RFC3339Nano), user.ID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user %s: %w", user.Email, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetUser returns the user with the given id.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func insertUser(ctx context.Context, tx *sql.Tx, user *model.User, email string, now time.Time) (*model.User, error) {
	created := &model.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(user.Name),
		Email:     email,
		Provider:  user.Provider,
		GoogleID:  user.GoogleID,
		Avatar:    user.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if created.Name == "" {
		created.Name = strings.SplitN(email, "@", 2)[0]
	}
	if created.Provider == "" {
		created.Provider = ProviderLocal
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, provider, google_id, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`, created.ID, created.Name, created.Email, created.Provider, created.GoogleID, created.Avatar,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano)); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", email, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func findUser(ctx context.Context, tx *sql.Tx, googleID, email string) (*model.User, error) {
	if googleID != "" {
		user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID))
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user             model.User
		created, updated string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Provider, &user.GoogleID, &user.Avatar, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	user.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
