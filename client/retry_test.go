package client

import (
	"net/http"
	"testing"
	"time"
)

func TestRetryPolicyDelayGrowth(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		JitterRatio: 0.2,
	}.withDefaults()
	noJitter := func() float64 { return 0.5 }

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
		{attempt: 4, want: 8 * time.Second},
		{attempt: 5, want: 8 * time.Second},
	}
	for _, tc := range cases {
		if got := policy.Delay(tc.attempt, noJitter); got != tc.want {
			t.Fatalf("attempt %d: expected %s, got %s", tc.attempt, tc.want, got)
		}
	}
}

func TestRetryPolicyJitterBounds(t *testing.T) {
	policy := RetryPolicy{BaseDelay: time.Second, MaxDelay: time.Minute, JitterRatio: 0.2}.withDefaults()

	low := policy.Delay(1, func() float64 { return 0 })
	high := policy.Delay(1, func() float64 { return 0.999999 })
	if low != 800*time.Millisecond {
		t.Fatalf("expected lower jitter bound 800ms, got %s", low)
	}
	if high <= time.Second || high > 1200*time.Millisecond {
		t.Fatalf("expected upper jitter bound within +20%%, got %s", high)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{}.withDefaults()
	if policy.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultMaxAttempts, policy.MaxAttempts)
	}
	if policy.BaseDelay != defaultBaseDelay || policy.MaxDelay != defaultMaxDelay {
		t.Fatalf("unexpected delay defaults: %+v", policy)
	}
	if policy.JitterRatio != defaultJitterRatio {
		t.Fatalf("unexpected jitter default: %v", policy.JitterRatio)
	}
}

func TestRetryableStatusDefaults(t *testing.T) {
	policy := RetryPolicy{}.withDefaults()
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !policy.retryableStatus(code) {
			t.Fatalf("expected %d to be retryable", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422, 501} {
		if policy.retryableStatus(code) {
			t.Fatalf("expected %d not to be retryable", code)
		}
	}
}

func TestRetryableStatusOverride(t *testing.T) {
	policy := RetryPolicy{RetryableStatuses: []int{429}}.withDefaults()
	if !policy.retryableStatus(429) {
		t.Fatal("expected configured status to be retryable")
	}
	// A configured set replaces the default, it does not extend it.
	for _, code := range []int{500, 502, 503, 504} {
		if policy.retryableStatus(code) {
			t.Fatalf("expected %d not to be retryable", code)
		}
	}
}

func TestRetryAfterDelay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if delay, ok := retryAfterDelay(map[string]string{"Retry-After": "30"}, now); !ok || delay != 30*time.Second {
		t.Fatalf("expected 30s, got %s ok=%t", delay, ok)
	}
	// Header lookup is case-insensitive.
	if _, ok := retryAfterDelay(map[string]string{"retry-after": "5"}, now); !ok {
		t.Fatal("expected lowercase header to match")
	}
	date := now.Add(90 * time.Second).Format(http.TimeFormat)
	if delay, ok := retryAfterDelay(map[string]string{"Retry-After": date}, now); !ok || delay != 90*time.Second {
		t.Fatalf("expected 90s from http date, got %s ok=%t", delay, ok)
	}
	ansi := now.Add(45 * time.Second).Format(time.ANSIC)
	if delay, ok := retryAfterDelay(map[string]string{"Retry-After": ansi}, now); !ok || delay != 45*time.Second {
		t.Fatalf("expected 45s from ansi date, got %s ok=%t", delay, ok)
	}
	past := now.Add(-time.Minute).Format(http.TimeFormat)
	if _, ok := retryAfterDelay(map[string]string{"Retry-After": past}, now); ok {
		t.Fatal("expected past date to be ignored")
	}
	if _, ok := retryAfterDelay(map[string]string{"Retry-After": "0"}, now); ok {
		t.Fatal("expected zero seconds to be ignored")
	}
	if _, ok := retryAfterDelay(nil, now); ok {
		t.Fatal("expected missing header to be ignored")
	}
	if _, ok := retryAfterDelay(map[string]string{"Retry-After": "soon"}, now); ok {
		t.Fatal("expected junk value to be ignored")
	}
}
