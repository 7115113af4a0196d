package ai

import (
	"sync"
	"time"
)

// CallLimiter enforces global per-minute/per-hour caps and a per-agent
// cooldown on completion calls. The background reflection path shares it
// with the turn path so the two together stay under budget.
type CallLimiter struct {
	mu           sync.Mutex
	perMinute    []time.Time
	perHour      []time.Time
	maxPerMinute int
	maxPerHour   int
	cooldown     time.Duration
	lastByAgent  map[string]time.Time
}

// DefaultCallLimiter returns a limiter: 10/min, 120/hour, 5s per-agent
// cooldown.
func DefaultCallLimiter() *CallLimiter {
	return NewCallLimiter(10, 120, 5*time.Second)
}

// NewCallLimiter creates a limiter with explicit caps.
func NewCallLimiter(perMinute, perHour int, cooldown time.Duration) *CallLimiter {
	return &CallLimiter{
		perMinute:    make([]time.Time, 0, 32),
		perHour:      make([]time.Time, 0, 128),
		maxPerMinute: perMinute,
		maxPerHour:   perHour,
		cooldown:     cooldown,
		lastByAgent:  make(map[string]time.Time),
	}
}

// Allow reports whether a completion call is allowed for this agent at now.
func (l *CallLimiter) Allow(agentID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastByAgent[agentID]; ok && now.Sub(last) < l.cooldown {
		return false
	}

	l.perMinute = trimBefore(l.perMinute, now.Add(-time.Minute))
	l.perHour = trimBefore(l.perHour, now.Add(-time.Hour))

	return len(l.perMinute) < l.maxPerMinute && len(l.perHour) < l.maxPerHour
}

// Record notes a completed call for agentID at now.
func (l *CallLimiter) Record(agentID string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perMinute = append(l.perMinute, now)
	l.perHour = append(l.perHour, now)
	l.lastByAgent[agentID] = now
}

func trimBefore(ts []time.Time, cutoff time.Time) []time.Time {
	out := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
