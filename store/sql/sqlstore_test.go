package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/sznchanda/arcade-ai/core"
	"github.com/sznchanda/arcade-ai/ratelimit"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// An in-memory sqlite database lives and dies with its connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{
		(*tokenRecord)(nil),
		(*rateLimitStateRecord)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

func newTestTokenStore(t *testing.T) *TokenStore {
	t.Helper()
	store, err := NewTokenStore(newTestDB(t))
	if err != nil {
		t.Fatalf("new token store: %v", err)
	}
	return store
}

func TestTokenStoreVersionedWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestTokenStore(t)

	ok, err := store.Put(ctx, "credential|user-1|clio", []byte("v1"), 0)
	if err != nil {
		t.Fatalf("create put: %v", err)
	}
	if !ok {
		t.Fatal("expected create at version 0 to succeed")
	}

	value, version, found, err := store.Get(ctx, "credential|user-1|clio")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || version != 1 || string(value) != "v1" {
		t.Fatalf("unexpected read value=%q version=%d found=%v", value, version, found)
	}

	// A second create against an existing key loses without an error.
	ok, err = store.Put(ctx, "credential|user-1|clio", []byte("late-create"), 0)
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if ok {
		t.Fatal("expected duplicate create to report a conflict")
	}

	ok, err = store.Put(ctx, "credential|user-1|clio", []byte("v2"), 1)
	if err != nil {
		t.Fatalf("update put: %v", err)
	}
	if !ok {
		t.Fatal("expected update at current version to succeed")
	}

	// A writer holding the old version must be rejected, not clobber.
	ok, err = store.Put(ctx, "credential|user-1|clio", []byte("stale"), 1)
	if err != nil {
		t.Fatalf("stale put: %v", err)
	}
	if ok {
		t.Fatal("expected stale write to report a conflict")
	}

	value, version, found, err = store.Get(ctx, "credential|user-1|clio")
	if err != nil {
		t.Fatalf("get after conflict: %v", err)
	}
	if !found || version != 2 || string(value) != "v2" {
		t.Fatalf("conflict must leave winner intact, got value=%q version=%d", value, version)
	}
}

func TestTokenStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestTokenStore(t)

	if _, err := store.Put(ctx, "credential|user-2|clio", []byte("v1"), 0); err != nil {
		t.Fatalf("seed put: %v", err)
	}
	if err := store.Delete(ctx, "credential|user-2|clio"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, found, err := store.Get(ctx, "credential|user-2|clio")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if found {
		t.Fatal("expected key to be gone after delete")
	}
	if err := store.Delete(ctx, "credential|user-2|clio"); err != nil {
		t.Fatalf("deleting a missing key must be a no-op, got %v", err)
	}
}

func TestTokenStoreValidatesInput(t *testing.T) {
	ctx := context.Background()
	store := newTestTokenStore(t)

	if _, _, _, err := store.Get(ctx, "  "); err == nil {
		t.Fatal("expected error for blank key on get")
	}
	if _, err := store.Put(ctx, "", []byte("x"), 0); err == nil {
		t.Fatal("expected error for blank key on put")
	}
	if _, err := store.Put(ctx, "k", []byte("x"), -1); err == nil {
		t.Fatal("expected error for negative expected version")
	}
	if err := store.Delete(ctx, ""); err == nil {
		t.Fatal("expected error for blank key on delete")
	}
}

func TestRateLimitStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewRateLimitStateStore(newTestDB(t))
	if err != nil {
		t.Fatalf("new rate-limit state store: %v", err)
	}

	key := core.RateLimitKey{ProviderID: "clio", UserID: "user-1", BucketKey: "default"}
	if _, err := store.Get(ctx, key); !errors.Is(err, ratelimit.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound for unseen key, got %v", err)
	}

	resetAt := time.Now().UTC().Add(45 * time.Second).Truncate(time.Second)
	throttledUntil := time.Now().UTC().Add(30 * time.Second).Truncate(time.Second)
	retryAfter := 30 * time.Second
	if err := store.Upsert(ctx, ratelimit.State{
		Key:            key,
		Limit:          100,
		Remaining:      0,
		ResetAt:        &resetAt,
		RetryAfter:     &retryAfter,
		ThrottledUntil: &throttledUntil,
		Attempts:       2,
		LastStatus:     429,
		UpdatedAt:      time.Now().UTC(),
		Metadata:       map[string]any{"source": "headers"},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	state, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.Key != key {
		t.Fatalf("unexpected key %+v", state.Key)
	}
	if state.Limit != 100 || state.Remaining != 0 {
		t.Fatalf("unexpected window limit=%d remaining=%d", state.Limit, state.Remaining)
	}
	if state.Attempts != 2 || state.LastStatus != 429 {
		t.Fatalf("unexpected throttle counters attempts=%d status=%d", state.Attempts, state.LastStatus)
	}
	if state.ResetAt == nil || state.ResetAt.Unix() != resetAt.Unix() {
		t.Fatalf("unexpected reset_at %v", state.ResetAt)
	}
	if state.RetryAfter == nil || *state.RetryAfter != retryAfter {
		t.Fatalf("unexpected retry_after %v", state.RetryAfter)
	}
	if state.ThrottledUntil == nil || state.ThrottledUntil.Unix() != throttledUntil.Unix() {
		t.Fatalf("unexpected throttled_until %v", state.ThrottledUntil)
	}
	if state.Metadata["source"] != "headers" {
		t.Fatalf("unexpected metadata %v", state.Metadata)
	}
	for _, internal := range []string{stateMetaAttempts, stateMetaLastStatus, stateMetaThrottledUntil} {
		if _, ok := state.Metadata[internal]; ok {
			t.Fatalf("internal metadata key %q leaked to caller", internal)
		}
	}
}

func TestRateLimitStateStoreUpsertReplacesRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store, err := NewRateLimitStateStore(db)
	if err != nil {
		t.Fatalf("new rate-limit state store: %v", err)
	}

	key := core.RateLimitKey{ProviderID: "Clio", UserID: "user-1", BucketKey: "Default"}
	if err := store.Upsert(ctx, ratelimit.State{Key: key, Limit: 100, Remaining: 40}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, ratelimit.State{Key: key, Limit: 100, Remaining: 39}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := db.NewSelect().Model((*rateLimitStateRecord)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected upsert to reuse the existing row, got %d rows", count)
	}

	state, err := store.Get(ctx, core.RateLimitKey{ProviderID: "clio", UserID: "user-1", BucketKey: "default"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.Remaining != 39 {
		t.Fatalf("expected latest remaining=39, got %d", state.Remaining)
	}
}

func TestRateLimitStateStoreValidatesKey(t *testing.T) {
	ctx := context.Background()
	store, err := NewRateLimitStateStore(newTestDB(t))
	if err != nil {
		t.Fatalf("new rate-limit state store: %v", err)
	}

	cases := []struct {
		name string
		key  core.RateLimitKey
	}{
		{"missing provider", core.RateLimitKey{UserID: "u", BucketKey: "b"}},
		{"missing user", core.RateLimitKey{ProviderID: "clio", BucketKey: "b"}},
		{"missing bucket", core.RateLimitKey{ProviderID: "clio", UserID: "u"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Get(ctx, tc.key); err == nil {
				t.Fatal("expected key validation error on get")
			}
			if err := store.Upsert(ctx, ratelimit.State{Key: tc.key}); err == nil {
				t.Fatal("expected key validation error on upsert")
			}
		})
	}
}

func TestStoreFactoryBuildsSharedStores(t *testing.T) {
	db := newTestDB(t)

	factory, err := NewStoreFactoryFromDB(db)
	if err != nil {
		t.Fatalf("new store factory: %v", err)
	}
	if factory.TokenStore() == nil || factory.RateLimitStateStore() == nil {
		t.Fatal("expected factory to build both stores")
	}
	if factory.DB() != db {
		t.Fatal("expected factory to keep the shared bun handle")
	}

	if err := NewStoreFactory().BuildStores(42); err == nil {
		t.Fatal("expected error for unsupported persistence client type")
	}
	if err := NewStoreFactory().BuildStores(nil); err == nil {
		t.Fatal("expected error for nil persistence client")
	}
}
