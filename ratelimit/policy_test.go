package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sznchanda/arcade-ai/core"
)

func testKey() core.RateLimitKey {
	return core.RateLimitKey{ProviderID: "clio", UserID: "user-1", BucketKey: "contacts.json"}
}

func newTestPolicy(now time.Time) (*AdaptivePolicy, *MemoryStateStore) {
	store := NewMemoryStateStore()
	policy := NewAdaptivePolicy(store)
	policy.Now = func() time.Time { return now }
	return policy, store
}

func TestBeforeCallAllowsUnknownBuckets(t *testing.T) {
	policy, _ := newTestPolicy(time.Now())
	if err := policy.BeforeCall(context.Background(), testKey()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAfterCallRecordsThrottleWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy, store := newTestPolicy(now)
	ctx := context.Background()

	err := policy.AfterCall(ctx, testKey(), core.ProviderResponseMeta{
		StatusCode: http.StatusTooManyRequests,
		Headers:    map[string]string{"Retry-After": "30"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := store.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ThrottledUntil == nil || !state.ThrottledUntil.Equal(now.Add(30*time.Second)) {
		t.Fatalf("expected throttle until %s, got %v", now.Add(30*time.Second), state.ThrottledUntil)
	}
	if state.Attempts != 1 || state.LastStatus != http.StatusTooManyRequests {
		t.Fatalf("unexpected state: %+v", state)
	}

	// The next call inside the window is short circuited.
	err = policy.BeforeCall(ctx, testKey())
	var throttled ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected throttled error, got %v", err)
	}
	if throttled.RetryAfter != 30*time.Second {
		t.Fatalf("expected 30s retry hint, got %s", throttled.RetryAfter)
	}
}

func TestAfterCallClearsThrottleOnSuccess(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy, store := newTestPolicy(now)
	ctx := context.Background()

	if err := policy.AfterCall(ctx, testKey(), core.ProviderResponseMeta{
		StatusCode: http.StatusTooManyRequests,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := policy.AfterCall(ctx, testKey(), core.ProviderResponseMeta{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"X-RateLimit-Limit":     "100",
			"X-RateLimit-Remaining": "42",
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := store.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ThrottledUntil != nil || state.Attempts != 0 {
		t.Fatalf("expected throttle cleared, got %+v", state)
	}
	if state.Limit != 100 || state.Remaining != 42 {
		t.Fatalf("expected headers parsed, got limit=%d remaining=%d", state.Limit, state.Remaining)
	}

	if err := policy.BeforeCall(ctx, testKey()); err != nil {
		t.Fatalf("expected path to reopen, got %v", err)
	}
}

func TestBeforeCallBlocksExhaustedQuota(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy, _ := newTestPolicy(now)
	ctx := context.Background()

	// Reset is 45s after the fixed clock above.
	if err := policy.AfterCall(ctx, testKey(), core.ProviderResponseMeta{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     "1773144045",
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := policy.BeforeCall(ctx, testKey())
	var throttled ThrottledError
	if !errors.As(err, &throttled) {
		t.Fatalf("expected quota exhaustion to block, got %v", err)
	}
}

func TestThrottleBackoffEscalatesWithoutHints(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy, store := newTestPolicy(now)
	policy.InitialBackoff = time.Second
	policy.MaxBackoff = 4 * time.Second
	ctx := context.Background()

	wants := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second}
	for i, want := range wants {
		if err := policy.AfterCall(ctx, testKey(), core.ProviderResponseMeta{
			StatusCode: http.StatusTooManyRequests,
		}); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		state, err := store.Get(ctx, testKey())
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if got := state.ThrottledUntil.Sub(now); got != want {
			t.Fatalf("attempt %d: expected backoff %s, got %s", i+1, want, got)
		}
	}
}

func TestThrottledErrorToRuntimeError(t *testing.T) {
	err := ThrottledError{ProviderID: "clio", BucketKey: "contacts.json", RetryAfter: 10 * time.Second}
	runtimeErr := err.ToRuntimeError()
	if runtimeErr.TextCode != core.RuntimeErrorRateLimited {
		t.Fatalf("unexpected text code %q", runtimeErr.TextCode)
	}
	if runtimeErr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected code %d", runtimeErr.Code)
	}
	if runtimeErr.Metadata["retry_after_ms"] != int64(10000) {
		t.Fatalf("unexpected metadata: %+v", runtimeErr.Metadata)
	}
}

func TestMemoryStateStoreNormalizesKeys(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	err := store.Upsert(ctx, State{Key: core.RateLimitKey{
		ProviderID: " Clio ",
		UserID:     "user-1",
		BucketKey:  "Contacts.JSON",
	}, Remaining: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := store.Get(ctx, testKey())
	if err != nil {
		t.Fatalf("expected normalized lookup to hit, got %v", err)
	}
	if state.Remaining != 5 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if _, err := store.Get(ctx, core.RateLimitKey{ProviderID: "clio", UserID: "user-2", BucketKey: "contacts.json"}); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected not-found for other user, got %v", err)
	}
}
