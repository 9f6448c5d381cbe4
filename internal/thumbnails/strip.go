package thumbnails

import (
	"sort"
	"sync"
)

// Strip holds the generated frames for one segment's scrub strip. Every
// write-back is checked against the strip's current segment identity, so a
// result arriving after the segment was superseded is discarded.
type Strip struct {
	mu        sync.Mutex
	segmentID string
	frames    map[int]Frame
}

// NewStrip returns a strip bound to the segment.
func NewStrip(segmentID string) *Strip {
	return &Strip{segmentID: segmentID, frames: make(map[int]Frame)}
}

// SegmentID returns the identity the strip currently accepts frames for.
func (s *Strip) SegmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.segmentID
}

// Reset rebinds the strip to a new segment, dropping all stored frames.
// In-flight generations for the old segment keep running until cancelled, but
// their results no longer land.
func (s *Strip) Reset(segmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segmentID = segmentID
	s.frames = make(map[int]Frame)
}

// Apply stores the frame if it belongs to the strip's current segment.
// Returns false for stale results.
func (s *Strip) Apply(segmentID string, frame Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if segmentID != s.segmentID {
		return false
	}
	s.frames[frame.Index] = frame
	return true
}

// Rotate applies a quarter-turn rotation to every stored frame in place.
func (s *Strip) Rotate(turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, frame := range s.frames {
		if frame.Image != nil {
			frame.Image = RotateImage(frame.Image, turns)
			s.frames[idx] = frame
		}
	}
}

// Frames returns the stored frames sorted by index.
func (s *Strip) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Frame, 0, len(s.frames))
	for _, frame := range s.frames {
		out = append(out, frame)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
