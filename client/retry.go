package client

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/core"
)

const (
	defaultMaxAttempts = 4
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
	defaultJitterRatio = 0.2
)

func defaultRetryableStatuses() []int {
	return []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
}

// RetryPolicy bounds the client's retry behavior. The delay before retry
// attempt n is min(BaseDelay*2^(n-1), MaxDelay) with +/-JitterRatio of
// random jitter applied. Only statuses in RetryableStatuses are
// re-attempted; an empty set falls back to 429 plus the transient 5xx
// family.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	JitterRatio       float64
	RetryableStatuses []int
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	if p.JitterRatio < 0 || p.JitterRatio >= 1 {
		p.JitterRatio = defaultJitterRatio
	}
	if len(p.RetryableStatuses) == 0 {
		p.RetryableStatuses = defaultRetryableStatuses()
	}
	return p
}

// retryableStatus reports whether the policy re-attempts the status.
func (p RetryPolicy) retryableStatus(status int) bool {
	for _, code := range p.RetryableStatuses {
		if code == status {
			return true
		}
	}
	return false
}

// Delay returns the jittered backoff before retry attempt. attempt counts
// completed attempts, starting at 1.
func (p RetryPolicy) Delay(attempt int, random func() float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if random == nil {
		random = defaultRand
	}
	// jitter in [-ratio, +ratio]
	jitter := (random()*2 - 1) * p.JitterRatio
	jittered := time.Duration(float64(delay) * (1 + jitter))
	if jittered < 0 {
		return 0
	}
	return jittered
}

func defaultRand() float64 {
	return rand.Float64()
}

func isNetworkError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == core.RuntimeErrorNetwork
}

// retryAfterDelay honors a Retry-After header, as either delta seconds or
// an HTTP date.
func retryAfterDelay(headers map[string]string, now time.Time) (time.Duration, bool) {
	raw := ""
	for key, value := range headers {
		if strings.EqualFold(strings.TrimSpace(key), "retry-after") {
			raw = strings.TrimSpace(value)
			break
		}
	}
	if raw == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(raw); err == nil {
		if at.After(now) {
			return at.Sub(now), true
		}
	}
	return 0, false
}
