package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/sznchanda/arcade-ai/core"
)

// TokenStore is the bun-backed versioned credential KV. Writes use
// optimistic concurrency: a put only lands when the caller's expected
// version matches the stored one.
type TokenStore struct {
	db   *bun.DB
	repo repository.Repository[*tokenRecord]
}

func NewTokenStore(db *bun.DB) (*TokenStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*tokenRecord](db, tokenHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid token repository wiring: %w", err)
		}
	}
	return &TokenStore{db: db, repo: repo}, nil
}

func (s *TokenStore) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	if s == nil || s.db == nil {
		return nil, 0, false, fmt.Errorf("sqlstore: token store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, 0, false, fmt.Errorf("sqlstore: token key is required")
	}

	record := &tokenRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	value := make([]byte, len(record.Value))
	copy(value, record.Value)
	return value, record.Version, true, nil
}

// Put writes value at expectedVersion+1. Expected version 0 creates the
// row. A mismatch returns (false, nil) so callers can re-read and retry.
func (s *TokenStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: token store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("sqlstore: token key is required")
	}
	if expectedVersion < 0 {
		return false, fmt.Errorf("sqlstore: expected version must not be negative")
	}

	now := time.Now().UTC()
	stored := make([]byte, len(value))
	copy(stored, value)

	if expectedVersion == 0 {
		record := &tokenRecord{
			ID:        uuid.NewString(),
			Key:       key,
			Value:     stored,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}

	res, err := s.db.NewUpdate().
		Model((*tokenRecord)(nil)).
		Set("value = ?", stored).
		Set("version = ?", expectedVersion+1).
		Set("updated_at = ?", now).
		Where("?TableAlias.key = ?", key).
		Where("?TableAlias.version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: token store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlstore: token key is required")
	}
	_, err := s.db.NewDelete().
		Model((*tokenRecord)(nil)).
		Where("?TableAlias.key = ?", key).
		Exec(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique") || strings.Contains(message, "duplicate")
}

var _ core.TokenStore = (*TokenStore)(nil)
