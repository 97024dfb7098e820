// Package ratelimit guards the admin upload endpoints so a burst of image
// batches cannot overwhelm the storage backend.
package ratelimit

import (
	"sync"
	"time"
)

// UploadLimiter enforces sliding-window limits on upload requests.
type UploadLimiter struct {
	perMinute int
	perHour   int
	enabled   bool

	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

func NewUploadLimiter(perMinute, perHour int, enabled bool) *UploadLimiter {
	return &UploadLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		enabled:   enabled,
	}
}

// Allow checks whether another upload request fits the windows and records it
// when it does.
func (l *UploadLimiter) Allow() bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.minuteWindow = keepAfter(l.minuteWindow, now.Add(-time.Minute))
	l.hourWindow = keepAfter(l.hourWindow, now.Add(-time.Hour))

	if l.perMinute > 0 && len(l.minuteWindow) >= l.perMinute {
		return false
	}
	if l.perHour > 0 && len(l.hourWindow) >= l.perHour {
		return false
	}

	l.minuteWindow = append(l.minuteWindow, now)
	l.hourWindow = append(l.hourWindow, now)
	return true
}

// Stats reports current window occupancy.
type Stats struct {
	Enabled            bool `json:"enabled"`
	RequestsLastMinute int  `json:"requests_last_minute"`
	RequestsLastHour   int  `json:"requests_last_hour"`
	LimitPerMinute     int  `json:"limit_per_minute"`
	LimitPerHour       int  `json:"limit_per_hour"`
}

func (l *UploadLimiter) GetStats() Stats {
	if !l.enabled {
		return Stats{Enabled: false}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.minuteWindow = keepAfter(l.minuteWindow, now.Add(-time.Minute))
	l.hourWindow = keepAfter(l.hourWindow, now.Add(-time.Hour))

	return Stats{
		Enabled:            true,
		RequestsLastMinute: len(l.minuteWindow),
		RequestsLastHour:   len(l.hourWindow),
		LimitPerMinute:     l.perMinute,
		LimitPerHour:       l.perHour,
	}
}

func keepAfter(times []time.Time, cutoff time.Time) []time.Time {
	out := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
