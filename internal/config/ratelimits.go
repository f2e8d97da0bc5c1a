package config

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Rate limited actions. Each one becomes the prefix of the limiter key
// ("upvote:<fingerprint>").
const (
	ActionUpvote      = "upvote"
	ActionCollections = "collections"
	ActionShare       = "share"
	ActionContact     = "contact"
	ActionRecommend   = "recommend"
)

// RatePolicy is the number of requests allowed per window for one action.
type RatePolicy struct {
	Limit  int
	Window time.Duration
}

// RateLimits holds per-action policies. Limits can be changed at runtime
// (e.g. from tests or an operator hook) so access is guarded.
type RateLimits struct {
	mu       sync.RWMutex
	window   time.Duration
	policies map[string]int
}

// NewRateLimits creates a policy set sharing a single window.
func NewRateLimits(window time.Duration, limits map[string]int) *RateLimits {
	copied := make(map[string]int, len(limits))
	for action, limit := range limits {
		copied[action] = limit
	}
	return &RateLimits{window: window, policies: copied}
}

// Policy returns the policy for an action. Unknown actions report ok=false.
func (r *RateLimits) Policy(action string) (RatePolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	limit, ok := r.policies[action]
	if !ok {
		return RatePolicy{}, false
	}
	return RatePolicy{Limit: limit, Window: r.window}, true
}

// SetLimit updates the limit for an action.
func (r *RateLimits) SetLimit(action string, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("rate limit for %s must be positive, got %d", action, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[action] = limit
	return nil
}

// Window returns the shared window length.
func (r *RateLimits) Window() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.window
}

// Actions lists configured actions in sorted order.
func (r *RateLimits) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	actions := make([]string, 0, len(r.policies))
	for action := range r.policies {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

func (r *RateLimits) validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_MINUTES must be positive, got %s", r.window)
	}
	for action, limit := range r.policies {
		if limit <= 0 {
			return fmt.Errorf("rate limit for %s must be positive, got %d", action, limit)
		}
	}
	return nil
}
