package scrub

import (
	"math"
	"time"
)

// Session carries the state of one drag gesture explicitly: the segment's
// timeline offset at drag start, the progress-to-trim conversion bounds, and
// the seek throttle bookkeeping. It is handed back to the controller on every
// gesture update so no shared captures exist between gesture callbacks.
type Session struct {
	SegmentID string

	// OriginOffset is the segment's composition start time at drag start;
	// subtracting it converts composition time to preview-local time.
	OriginOffset float64

	// MaxStart is duration - trimDuration at drag start, the denominator
	// for normalized progress.
	MaxStart float64

	// TrimStart is the last value computed from a gesture update. It is
	// committed to the segment model only when the drag ends.
	TrimStart float64

	throttle  time.Duration
	tolerance float64
	lastSeek  time.Time
}

// TrimStartFor converts normalized progress p in [0,1] to a trim start.
// Progress outside the range is clamped.
func (s *Session) TrimStartFor(p float64) float64 {
	p = math.Min(math.Max(p, 0), 1)
	return p * s.MaxStart
}

// allowSeek reports whether enough time has passed since the last permitted
// seek. Requests inside the throttle window are dropped, not deferred.
func (s *Session) allowSeek(now time.Time) bool {
	if !s.lastSeek.IsZero() && now.Sub(s.lastSeek) < s.throttle {
		return false
	}
	s.lastSeek = now
	return true
}
