package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"story_client/internal/domain"
)

// CredentialStore keeps at most one row: saving a session replaces any other.
type CredentialStore struct {
	db *sqlx.DB
	tx *TransactionManager
}

func NewCredentialStore(db *sqlx.DB) *CredentialStore {
	return &CredentialStore{
		db: db,
		tx: NewTransactionManager(db),
	}
}

func (s *CredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)

		if _, err := exec.ExecContext(txCtx, "DELETE FROM credentials WHERE username <> $1", creds.Username); err != nil {
			return fmt.Errorf("drop other sessions: %w", err)
		}

		query := `
			INSERT INTO credentials (username, token, saved_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (username) DO UPDATE SET
				token = EXCLUDED.token,
				saved_at = EXCLUDED.saved_at`

		if _, err := exec.ExecContext(txCtx, query, creds.Username, creds.Token, creds.SavedAt); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		return nil
	})
}

func (s *CredentialStore) Load(ctx context.Context) (*domain.Credentials, error) {
	var creds domain.Credentials
	query := `
		SELECT username, token, saved_at
		FROM credentials
		ORDER BY saved_at DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &creds, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM credentials")
	return err
}
