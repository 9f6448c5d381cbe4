package timeline

import (
	"fmt"
	"sort"
	"sync"

	"dayreel/internal/services"
)

// List is the ordered, mutable segment model for one editing session. It is
// owned by a single writer; reads from observer goroutines go through the
// mutex so a concurrent offset rebuild sees a consistent snapshot.
type List struct {
	mu       sync.RWMutex
	segments []Segment
	version  uint64
}

// NewList returns an empty segment list.
func NewList() *List {
	return &List{}
}

// Version returns the mutation counter. Derived structures cache it to decide
// when to recompute.
func (l *List) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Len returns the number of segments, included or not.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.segments)
}

// Append adds a segment at the end of the order. The segment's Order field is
// assigned by the list; a duplicate ID is rejected.
func (l *List) Append(seg Segment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seg.ID == "" {
		return services.Wrap(services.ErrValidation, "timeline", "append", "segment has no id", nil)
	}
	for _, existing := range l.segments {
		if existing.ID == seg.ID {
			return services.Wrap(services.ErrValidation, "timeline", "append", fmt.Sprintf("segment %s already present", seg.ID), nil)
		}
	}
	seg.Order = l.nextOrder()
	l.segments = append(l.segments, seg)
	l.version++
	return nil
}

func (l *List) nextOrder() int {
	next := 0
	for _, seg := range l.segments {
		if seg.Order >= next {
			next = seg.Order + 1
		}
	}
	return next
}

// Get returns a copy of the segment with the given ID.
func (l *List) Get(id string) (Segment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, seg := range l.segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return Segment{}, false
}

// Segments returns a copy of all segments sorted by order.
func (l *List) Segments() []Segment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Segment, len(l.segments))
	copy(out, l.segments)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SetTrim updates a segment's trim window. Values are clamped on read, never
// rejected here, so a drag gesture can write raw values at full rate.
func (l *List) SetTrim(id string, trimStart, trimDuration float64) bool {
	return l.mutate(id, func(seg *Segment) {
		seg.TrimStart = trimStart
		seg.TrimDuration = trimDuration
	})
}

// SetTrimStart updates only the trim start, preserving the window length.
func (l *List) SetTrimStart(id string, trimStart float64) bool {
	return l.mutate(id, func(seg *Segment) {
		seg.TrimStart = trimStart
	})
}

// ApplyProbe refreshes a segment's probed source facts: duration, natural
// size, container orientation and audio presence. The trim window is clamped
// against the new duration so a source that shrank on disk stays playable.
func (l *List) ApplyProbe(id string, durationSeconds float64, natural Size, sourceRotation int, hasAudio bool) bool {
	return l.mutate(id, func(seg *Segment) {
		seg.DurationSeconds = durationSeconds
		seg.NaturalSize = natural
		seg.SourceRotation = normalizeTurns(sourceRotation)
		seg.HasAudio = hasAudio
		seg.TrimStart, seg.TrimDuration = ClampTrim(seg.TrimStart, seg.TrimDuration, durationSeconds)
	})
}

// Rotate advances a segment's user rotation by one quarter turn.
func (l *List) Rotate(id string) bool {
	return l.mutate(id, func(seg *Segment) {
		seg.RotationQuarterTurns = normalizeTurns(seg.RotationQuarterTurns + 1)
	})
}

// Remove deletes the segment and renumbers the remaining order sequence.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, seg := range l.segments {
		if seg.ID == id {
			l.segments = append(l.segments[:i], l.segments[i+1:]...)
			l.renumber()
			l.version++
			return true
		}
	}
	return false
}

// MoveTo places the segment at the given position in the order sequence and
// renumbers so orders stay unique and dense.
func (l *List) MoveTo(id string, position int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := -1
	sort.Slice(l.segments, func(i, j int) bool { return l.segments[i].Order < l.segments[j].Order })
	for i, seg := range l.segments {
		if seg.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	if position < 0 {
		position = 0
	}
	if position >= len(l.segments) {
		position = len(l.segments) - 1
	}
	seg := l.segments[idx]
	l.segments = append(l.segments[:idx], l.segments[idx+1:]...)
	l.segments = append(l.segments[:position], append([]Segment{seg}, l.segments[position:]...)...)
	l.renumber()
	l.version++
	return true
}

func (l *List) renumber() {
	sort.Slice(l.segments, func(i, j int) bool { return l.segments[i].Order < l.segments[j].Order })
	for i := range l.segments {
		l.segments[i].Order = i
	}
}

func (l *List) mutate(id string, fn func(*Segment)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.segments {
		if l.segments[i].ID == id {
			fn(&l.segments[i])
			l.version++
			return true
		}
	}
	return false
}
