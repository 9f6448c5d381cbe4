package scrub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dayreel/internal/composition"
	"dayreel/internal/config"
	"dayreel/internal/logging"
	"dayreel/internal/mediasource"
	"dayreel/internal/services"
	"dayreel/internal/thumbnails"
	"dayreel/internal/timeline"
)

// State is the controller's lifecycle phase.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateFinished State = "finished"
)

// PlaybackState is the sub-state within Ready.
type PlaybackState string

const (
	PlaybackPaused    PlaybackState = "paused"
	PlaybackPlaying   PlaybackState = "playing"
	PlaybackScrubbing PlaybackState = "scrubbing"
)

// Mode selects between segment-scoped editing preview and whole-timeline
// compilation playback.
type Mode int

const (
	// ModeSegment previews only the selected segment's trimmed window;
	// playback auto-pauses at the window end.
	ModeSegment Mode = iota
	// ModeCompilation plays the assembled timeline and publishes the
	// current segment index as the play head crosses boundaries.
	ModeCompilation
)

const observerInterval = 100 * time.Millisecond

// Controller owns all preview state for one editing or playback session.
type Controller struct {
	source mediasource.Source
	player Player
	logger *slog.Logger
	mode   Mode

	list  *timeline.List
	index *timeline.OffsetIndex

	throttle  time.Duration
	tolerance float64
	debounce  time.Duration

	// OnSegmentChange, when set before Load, is called from the playback
	// observer whenever compilation playback crosses into a new segment.
	OnSegmentChange func(index int)

	mu         sync.Mutex
	state      State
	playback   PlaybackState
	selectedID string
	muted      bool
	background *composition.BackgroundAudio
	renderSize timeline.Size

	rebuildGen    uint64
	rebuildCancel context.CancelFunc
	rebuilding    bool
	currentPlan   *composition.Plan
	debounceTimer *time.Timer

	observerCancel context.CancelFunc
	segmentCursor  int

	strips *thumbnails.Manager
}

// NewController constructs a segment-scoped editing controller.
func NewController(source mediasource.Source, player Player, logger *slog.Logger, cfg config.Scrub) *Controller {
	return newController(source, player, logger, cfg, ModeSegment, timeline.Size{})
}

// NewCompilationController constructs a whole-timeline playback controller
// rendering at the given size.
func NewCompilationController(source mediasource.Source, player Player, logger *slog.Logger, cfg config.Scrub, renderSize timeline.Size) *Controller {
	return newController(source, player, logger, cfg, ModeCompilation, renderSize)
}

func newController(source mediasource.Source, player Player, logger *slog.Logger, cfg config.Scrub, mode Mode, renderSize timeline.Size) *Controller {
	list := timeline.NewList()
	return &Controller{
		source:        source,
		player:        player,
		logger:        logging.NewComponentLogger(logger, "scrub"),
		mode:          mode,
		list:          list,
		index:         timeline.NewOffsetIndex(list),
		throttle:      time.Duration(cfg.ThrottleMS) * time.Millisecond,
		tolerance:     cfg.DragTolerance,
		debounce:      time.Duration(cfg.RebuildDebounceMS) * time.Millisecond,
		renderSize:    renderSize,
		state:         StateIdle,
		playback:      PlaybackPaused,
		segmentCursor: -1,
	}
}

// List exposes the segment model. Mutations made directly on it take effect
// in the preview after the next rebuild; the controller's own mutation
// helpers schedule that rebuild themselves.
func (c *Controller) List() *timeline.List { return c.list }

// Index exposes the offset index bound to the controller's list.
func (c *Controller) Index() *timeline.OffsetIndex { return c.index }

// State returns the lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Playback returns the sub-state within Ready.
func (c *Controller) Playback() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playback
}

// Rebuilding reports whether a preview rebuild is in flight.
func (c *Controller) Rebuilding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilding
}

// SelectedSegment returns the active segment ID.
func (c *Controller) SelectedSegment() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Plan returns the most recently loaded preview plan.
func (c *Controller) Plan() *composition.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPlan
}

// AttachStrips connects a thumbnail strip manager. Loaded segments get
// tracked strips, and Rotate turns stored frames in place before the full
// regeneration lands. Attach before Load.
func (c *Controller) AttachStrips(m *thumbnails.Manager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strips = m
}

// Load probes all source references concurrently, populates the segment
// model in input order, and loads the initial preview. Probe failures drop
// the affected segment; only a total absence of usable media fails the load.
func (c *Controller) Load(ctx context.Context, refs []string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return services.Wrap(services.ErrValidation, "scrub", "load", fmt.Sprintf("controller is %s, not idle", c.state), nil)
	}
	c.state = StateLoading
	c.mu.Unlock()

	type outcome struct {
		seg timeline.Segment
		err error
	}
	results := make([]outcome, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			seg, err := mediasource.NewSegment(ctx, c.source, ref)
			results[i] = outcome{seg: seg, err: err}
		}(i, ref)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return err
	}

	for i, res := range results {
		if res.err != nil {
			c.logger.Warn("segment dropped: probe failed",
				logging.String("source", refs[i]),
				logging.Error(res.err))
			continue
		}
		if err := c.list.Append(res.seg); err != nil {
			c.mu.Lock()
			c.state = StateIdle
			c.mu.Unlock()
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, seg := range c.list.Segments() {
		if seg.Included() {
			c.selectedID = seg.ID
			break
		}
	}
	if c.selectedID == "" {
		c.state = StateIdle
		return services.Wrap(services.ErrNoSelectedSegments, "scrub", "load", "no usable segments after probing", nil)
	}

	plan, err := c.buildPlanLocked()
	if err != nil {
		c.state = StateIdle
		return err
	}
	if err := c.player.Load(ctx, plan); err != nil {
		c.state = StateIdle
		return err
	}
	c.currentPlan = plan
	c.state = StateReady
	c.playback = PlaybackPaused
	if c.strips != nil {
		for _, seg := range c.list.Segments() {
			c.strips.Track(seg)
		}
	}
	c.logger.Info("preview loaded",
		logging.Int("segments", c.list.Len()),
		logging.Float64("total_duration", c.index.TotalDuration()))
	return nil
}

// SelectSegment replaces the live preview with the given segment's own
// trimmed sub-composition, after re-probing just that segment. Latency stays
// proportional to one segment, not the whole timeline.
func (c *Controller) SelectSegment(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return services.Wrap(services.ErrValidation, "scrub", "select segment", fmt.Sprintf("controller is %s, not ready", c.state), nil)
	}
	if id == c.selectedID {
		return nil
	}
	seg, ok := c.list.Get(id)
	if !ok {
		return services.Wrap(services.ErrValidation, "scrub", "select segment", "unknown segment "+id, nil)
	}

	c.mu.Unlock()
	info, err := c.source.Probe(ctx, seg.SourceRef)
	c.mu.Lock()
	if err != nil {
		return err
	}
	if c.state != StateReady {
		return services.Wrap(services.ErrValidation, "scrub", "select segment", "controller left ready during probe", nil)
	}

	// The source may have changed on disk since the initial load; the fresh
	// probe result replaces the stored facts before the preview rebuilds.
	c.list.ApplyProbe(id, info.DurationSeconds, info.NaturalSize, info.RotationQuarterTurns, info.HasAudio)
	c.selectedID = id
	c.cancelPendingRebuildLocked()
	c.startRebuildLocked()
	return nil
}

// BeginScrub starts a drag gesture on the segment. Playback pauses
// immediately and any in-flight rebuild is cancelled. The returned session
// must be threaded through UpdateScrub and EndScrub.
func (c *Controller) BeginScrub(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return nil, services.Wrap(services.ErrValidation, "scrub", "begin scrub", fmt.Sprintf("controller is %s, not ready", c.state), nil)
	}
	seg, ok := c.list.Get(id)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "scrub", "begin scrub", "unknown segment "+id, nil)
	}

	if c.playback == PlaybackPlaying {
		c.player.Pause()
		c.stopObserverLocked()
	}
	c.cancelPendingRebuildLocked()
	c.playback = PlaybackScrubbing
	c.selectedID = id

	offset, _ := c.index.OffsetFor(id)
	return &Session{
		SegmentID:    id,
		OriginOffset: offset,
		MaxStart:     seg.MaxTrimStart(),
		TrimStart:    seg.TrimStart,
		throttle:     c.throttle,
		tolerance:    c.tolerance,
	}, nil
}

// UpdateScrub handles one gesture update with normalized progress p. The
// computed trim start lives only in the session until the drag ends; the
// preview is seeked through the offset-index conversion, throttled to one
// seek per interval. Returns the trim start the gesture now represents.
func (c *Controller) UpdateScrub(session *Session, p float64) float64 {
	trimStart := session.TrimStartFor(p)
	session.TrimStart = trimStart

	c.mu.Lock()
	scrubbing := c.playback == PlaybackScrubbing && c.state == StateReady
	c.mu.Unlock()
	if !scrubbing {
		return trimStart
	}
	if !session.allowSeek(time.Now()) {
		return trimStart
	}

	compositionTime, ok := c.index.ClipTimeToCompositionTime(session.SegmentID, trimStart)
	if !ok {
		return trimStart
	}
	local := compositionTime - session.OriginOffset
	if local < 0 {
		local = 0
	}
	c.player.SeekTo(local, session.tolerance)
	return trimStart
}

// EndScrub commits the final trim start to the segment model, performs one
// exact seek, and schedules a full preview rebuild behind the debounce window
// so it coalesces with rapid mute or background toggles.
func (c *Controller) EndScrub(session *Session, p float64) float64 {
	trimStart := session.TrimStartFor(p)
	session.TrimStart = trimStart
	c.list.SetTrimStart(session.SegmentID, trimStart)

	compositionTime, ok := c.index.ClipTimeToCompositionTime(session.SegmentID, trimStart)
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		local := compositionTime - session.OriginOffset
		if local < 0 {
			local = 0
		}
		c.player.SeekTo(local, 0)
	}
	if c.playback == PlaybackScrubbing {
		c.playback = PlaybackPaused
	}
	c.scheduleDebouncedRebuildLocked()
	return trimStart
}

// SetMuted toggles original audio and schedules a coalesced preview rebuild.
func (c *Controller) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted == muted {
		return
	}
	c.muted = muted
	c.scheduleDebouncedRebuildLocked()
}

// SetBackground replaces the background track selection and schedules a
// coalesced preview rebuild.
func (c *Controller) SetBackground(background *composition.BackgroundAudio) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if background == nil {
		c.background = nil
	} else {
		copied := *background
		c.background = &copied
	}
	c.scheduleDebouncedRebuildLocked()
}

// Rotate advances the segment's rotation and schedules a coalesced rebuild.
// An attached strip manager turns the segment's generated thumbnails in place
// right away and regenerates them behind the rebuild.
func (c *Controller) Rotate(id string) bool {
	if !c.list.Rotate(id) {
		return false
	}
	c.mu.Lock()
	strips := c.strips
	c.mu.Unlock()
	if strips != nil {
		if seg, ok := c.list.Get(id); ok {
			strips.Rotate(seg)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleDebouncedRebuildLocked()
	return true
}

// Play starts playback. In segment mode only the selected segment's trimmed
// window plays and playback auto-pauses at its end; in compilation mode the
// observer publishes segment boundary crossings and finishes at the end.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady || c.playback != PlaybackPaused {
		return
	}
	c.playback = PlaybackPlaying
	c.player.Play()
	c.startObserverLocked()
}

// Pause stops playback.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playback != PlaybackPlaying {
		return
	}
	c.player.Pause()
	c.playback = PlaybackPaused
	c.stopObserverLocked()
}

// Close cancels background work. The controller is unusable afterward.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingRebuildLocked()
	c.stopObserverLocked()
	c.state = StateIdle
}

func (c *Controller) startObserverLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.observerCancel = cancel
	if c.mode == ModeSegment {
		seg, ok := c.list.Get(c.selectedID)
		if !ok {
			return
		}
		_, windowEnd := seg.EffectiveWindow()
		go c.observeSegment(ctx, windowEnd)
		return
	}
	go c.observeCompilation(ctx)
}

func (c *Controller) stopObserverLocked() {
	if c.observerCancel != nil {
		c.observerCancel()
		c.observerCancel = nil
	}
}

// observeSegment auto-pauses when the play head crosses the trimmed window's
// end. The preview item is the trimmed window itself, so the end is its
// local duration.
func (c *Controller) observeSegment(ctx context.Context, windowEnd float64) {
	ticker := time.NewTicker(observerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if c.player.CurrentTime() < windowEnd {
			continue
		}
		c.mu.Lock()
		if c.playback == PlaybackPlaying {
			c.player.Pause()
			c.playback = PlaybackPaused
			c.stopObserverLocked()
		}
		c.mu.Unlock()
		return
	}
}

// observeCompilation tracks composition time against the offset map,
// publishing the current segment index on boundary crossings and finishing at
// the last segment's end.
func (c *Controller) observeCompilation(ctx context.Context) {
	ticker := time.NewTicker(observerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		now := c.player.CurrentTime()
		total := c.index.TotalDuration()
		if now >= total {
			c.mu.Lock()
			if c.playback == PlaybackPlaying {
				c.player.Pause()
				c.playback = PlaybackPaused
				c.state = StateFinished
				c.stopObserverLocked()
			}
			c.mu.Unlock()
			return
		}
		_, idx, ok := c.index.SegmentAt(now)
		if !ok {
			continue
		}
		c.mu.Lock()
		changed := idx != c.segmentCursor
		if changed {
			c.segmentCursor = idx
		}
		callback := c.OnSegmentChange
		c.mu.Unlock()
		if changed && callback != nil {
			callback(idx)
		}
	}
}

func (c *Controller) cancelPendingRebuildLocked() {
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
		c.debounceTimer = nil
	}
	if c.rebuildCancel != nil {
		c.rebuildCancel()
		c.rebuildCancel = nil
	}
	c.rebuilding = false
}

// scheduleDebouncedRebuildLocked supersedes any pending rebuild by
// cancellation, then arms the debounce timer. Rapid successive mutations keep
// pushing the single timer out; only the last state is ever built.
func (c *Controller) scheduleDebouncedRebuildLocked() {
	c.cancelPendingRebuildLocked()
	c.debounceTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.startRebuildLocked()
	})
}

func (c *Controller) startRebuildLocked() {
	if c.state != StateReady {
		return
	}
	if c.rebuildCancel != nil {
		c.rebuildCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.rebuildCancel = cancel
	c.rebuildGen++
	gen := c.rebuildGen
	c.rebuilding = true

	plan, err := c.buildPlanLocked()
	if err != nil {
		c.rebuilding = false
		c.rebuildCancel = nil
		cancel()
		c.logger.Warn("preview rebuild skipped", logging.Error(err))
		return
	}

	go func() {
		loadErr := c.player.Load(ctx, plan)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.rebuildGen != gen || ctx.Err() != nil {
			// Superseded: a newer rebuild owns the state now.
			return
		}
		c.rebuilding = false
		c.rebuildCancel = nil
		if loadErr != nil {
			c.logger.Warn("preview reload failed", logging.Error(loadErr))
			return
		}
		c.currentPlan = plan
	}()
}

func (c *Controller) buildPlanLocked() (*composition.Plan, error) {
	if c.mode == ModeCompilation {
		return composition.Build(c.list.Segments(), composition.Options{
			MuteOriginalAudio: c.muted,
			Background:        c.background,
			RenderSize:        c.renderSize,
			CoverFit:          true,
			DateOverlays:      true,
		})
	}
	seg, ok := c.list.Get(c.selectedID)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "scrub", "build preview", "no segment selected", nil)
	}
	return composition.Build([]timeline.Segment{seg}, composition.Options{
		MuteOriginalAudio: c.muted,
		Background:        c.background,
	})
}
