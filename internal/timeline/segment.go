package timeline

import (
	"math"

	"github.com/google/uuid"
)

// MinTrimDuration is the lower clamp bound for a trim window. A window shorter
// than this is only produced when the source itself has less media left after
// the trim start.
const MinTrimDuration = 0.1

// Size is a media frame size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Swapped returns the size with width and height exchanged.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// IsZero reports whether either dimension is missing.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Segment is one user-selected source clip plus its trim and rotation state.
type Segment struct {
	ID    string
	Order int

	// SourceRef locates the probed source media.
	SourceRef string
	// Day is the calendar day the clip belongs to; used by compilation
	// builds to stamp a date overlay onto the segment's placement.
	Day Day

	DurationSeconds float64
	NaturalSize     Size
	// SourceRotation is the container orientation in quarter turns,
	// resolved during probing. Applied before the user rotation.
	SourceRotation int
	HasAudio       bool

	// RotationQuarterTurns is the user-chosen rotation, 0..3.
	RotationQuarterTurns int

	TrimStart    float64
	TrimDuration float64
}

// NewSegment constructs a segment for probed source media with a fresh
// identity and the default trim window at the head of the clip.
func NewSegment(sourceRef string, durationSeconds float64, natural Size, sourceRotation int, hasAudio bool) Segment {
	trim := defaultTrimDuration(durationSeconds)
	return Segment{
		ID:              uuid.NewString(),
		SourceRef:       sourceRef,
		DurationSeconds: durationSeconds,
		NaturalSize:     natural,
		SourceRotation:  normalizeTurns(sourceRotation),
		HasAudio:        hasAudio,
		TrimDuration:    trim,
	}
}

func defaultTrimDuration(duration float64) float64 {
	const def = 2.0
	if duration < def {
		return duration
	}
	return def
}

// ClampTrim applies the trim clamping policy: the start is kept within the
// source, and the duration is raised to MinTrimDuration then capped by the
// media remaining after the start. It is idempotent. A non-positive result
// duration means the segment contributes nothing to the timeline.
func ClampTrim(trimStart, trimDuration, duration float64) (safeStart, safeDuration float64) {
	if duration <= 0 {
		return 0, 0
	}
	safeStart = math.Min(math.Max(trimStart, 0), duration)
	remaining := duration - safeStart
	safeDuration = math.Min(math.Max(trimDuration, MinTrimDuration), remaining)
	if safeDuration <= 0 {
		return safeStart, 0
	}
	return safeStart, safeDuration
}

// EffectiveWindow returns the clamped trim window for the segment.
func (s Segment) EffectiveWindow() (start, duration float64) {
	return ClampTrim(s.TrimStart, s.TrimDuration, s.DurationSeconds)
}

// Included reports whether the segment contributes a non-zero range to the
// assembled timeline.
func (s Segment) Included() bool {
	_, d := s.EffectiveWindow()
	return d > 0
}

// TotalRotation is the combined source and user rotation in quarter turns.
func (s Segment) TotalRotation() int {
	return normalizeTurns(s.SourceRotation + s.RotationQuarterTurns)
}

// OrientedSize is the natural size after the source orientation is applied,
// before user rotation.
func (s Segment) OrientedSize() Size {
	if s.SourceRotation%2 == 1 {
		return s.NaturalSize.Swapped()
	}
	return s.NaturalSize
}

// RenderSize is the size the segment presents on the timeline after both
// source orientation and user rotation.
func (s Segment) RenderSize() Size {
	if s.TotalRotation()%2 == 1 {
		return s.NaturalSize.Swapped()
	}
	return s.NaturalSize
}

// MaxTrimStart is the largest trim start that still leaves the current trim
// duration available, the denominator for normalized scrub progress.
func (s Segment) MaxTrimStart() float64 {
	max := s.DurationSeconds - s.TrimDuration
	if max < 0 {
		return 0
	}
	return max
}

func normalizeTurns(turns int) int {
	turns %= 4
	if turns < 0 {
		turns += 4
	}
	return turns
}
