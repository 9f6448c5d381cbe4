package thumbnails

import (
	"context"
	"log/slog"
	"sync"

	"dayreel/internal/logging"
	"dayreel/internal/timeline"
)

// Manager owns one scrub strip per segment and keeps each current as the
// segment changes. Rotation is answered twice: the stored frames turn in
// place for immediate feedback, then a full regeneration replaces them with
// frames resampled from source.
type Manager struct {
	pipeline *Pipeline
	logger   *slog.Logger

	mu      sync.Mutex
	strips  map[string]*Strip
	cancels map[string]context.CancelFunc
}

// NewManager constructs a manager generating through the pipeline.
func NewManager(pipeline *Pipeline, logger *slog.Logger) *Manager {
	return &Manager{
		pipeline: pipeline,
		logger:   logging.NewComponentLogger(logger, "thumbnails"),
		strips:   make(map[string]*Strip),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Track binds a strip to the segment and starts generating its frames.
// Tracking an already tracked segment drops its frames and starts over.
func (m *Manager) Track(seg timeline.Segment) *Strip {
	m.mu.Lock()
	strip, ok := m.strips[seg.ID]
	if ok {
		strip.Reset(seg.ID)
	} else {
		strip = NewStrip(seg.ID)
		m.strips[seg.ID] = strip
	}
	m.mu.Unlock()
	m.regenerate(seg, strip)
	return strip
}

// Lookup returns the strip tracked for the segment.
func (m *Manager) Lookup(id string) (*Strip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	strip, ok := m.strips[id]
	return strip, ok
}

// Rotate turns the segment's stored frames in place so the scrub strip
// reflects the new orientation immediately, then schedules the full
// regeneration that replaces the lossy in-place turns. The segment must
// already carry the advanced rotation.
func (m *Manager) Rotate(seg timeline.Segment) {
	m.mu.Lock()
	strip, ok := m.strips[seg.ID]
	m.mu.Unlock()
	if !ok {
		return
	}
	strip.Rotate(1)
	m.regenerate(seg, strip)
}

// Forget cancels generation for the segment and drops its strip.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
	delete(m.strips, id)
}

// Close cancels every running generation. Strips keep their current frames.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}
}

// regenerate supersedes any in-flight generation for the segment and streams
// a fresh set of frames into the strip, stored in the segment's current user
// orientation.
func (m *Manager) regenerate(seg timeline.Segment, strip *Strip) {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if prev, ok := m.cancels[seg.ID]; ok {
		prev()
	}
	m.cancels[seg.ID] = cancel
	m.mu.Unlock()

	turns := seg.RotationQuarterTurns
	go func() {
		defer cancel()
		for frame := range m.pipeline.Generate(ctx, seg) {
			if frame.Image != nil && turns != 0 {
				frame.Image = RotateImage(frame.Image, turns)
			}
			strip.Apply(seg.ID, frame)
		}
	}()
}
