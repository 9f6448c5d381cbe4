package composition

import (
	"fmt"
	"sort"

	"dayreel/internal/services"
	"dayreel/internal/timeline"
)

// OriginalAudioVolume is the fixed gain for segment audio when unmuted.
const OriginalAudioVolume = 1.0

// Insertion places a sub-range of a source onto a track at a timeline time.
type Insertion struct {
	SourceRef      string
	SourceStart    float64
	SourceDuration float64
	At             float64
}

// Track is an ordered set of gap-free insertions plus a mix gain.
type Track struct {
	Insertions []Insertion
	Volume     float64
}

// Placement is a segment's resolved position within the assembled timeline.
type Placement struct {
	SegmentID      string
	Day            timeline.Day
	OutputStart    float64
	OutputDuration float64
	SourceStart    float64
	Transform      Affine
}

// Overlay is a time-bounded text layer, visible exactly during its range.
type Overlay struct {
	Text  string
	Start float64
	End   float64
}

// Plan is the assembled, renderable timeline. Immutable once built.
type Plan struct {
	VideoTrack      Track
	AudioTrack      *Track
	BackgroundTrack *Track
	Placements      []Placement
	Overlays        []Overlay
	TotalDuration   float64
	RenderSize      timeline.Size
	// BackgroundVolume is the mix gain applied to the background track,
	// independent of the original audio gain.
	BackgroundVolume float64
}

// BackgroundAudio is a pre-probed background track selection: the caller
// resolves the source's duration so Build stays a pure function.
type BackgroundAudio struct {
	SourceRef string
	Volume    float64
	Duration  float64
}

// Options configures a build.
type Options struct {
	MuteOriginalAudio bool
	Background        *BackgroundAudio

	// RenderSize fixes the output geometry. Zero means the plan renders at
	// the first included segment's rotated natural size.
	RenderSize timeline.Size

	// CoverFit scales every segment to fill RenderSize, centered, cropping
	// overflow. Used for monthly compilations; per-day edits render at
	// natural size.
	CoverFit bool

	// DateOverlays adds a text layer per placement showing its Day, bounded
	// to the placement's output range.
	DateOverlays bool
}

// Build assembles the plan. Segments that clamp to zero duration are skipped
// silently; only a total absence of usable segments is an error.
func Build(segments []timeline.Segment, opts Options) (*Plan, error) {
	if opts.CoverFit && opts.RenderSize.IsZero() {
		return nil, services.Wrap(services.ErrUnableToCreateTrack, "composition", "video track", "cover fit requires an explicit render size", nil)
	}
	if opts.RenderSize.Width < 0 || opts.RenderSize.Height < 0 {
		return nil, services.Wrap(services.ErrUnableToCreateTrack, "composition", "video track", "negative render size", nil)
	}
	if opts.Background != nil && opts.Background.Duration <= 0 {
		return nil, services.Wrap(services.ErrBackgroundTrackLoad, "composition", "background track", opts.Background.SourceRef, nil)
	}

	ordered := make([]timeline.Segment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	plan := &Plan{RenderSize: opts.RenderSize}
	var audio *Track
	if !opts.MuteOriginalAudio {
		audio = &Track{Volume: OriginalAudioVolume}
	}

	cursor := 0.0
	for _, seg := range ordered {
		safeStart, safeDuration := seg.EffectiveWindow()
		if safeDuration <= 0 {
			continue
		}

		if plan.RenderSize.IsZero() {
			natural := seg.RenderSize()
			if natural.IsZero() {
				return nil, services.Wrap(services.ErrUnableToCreateTrack, "composition", "video track", fmt.Sprintf("segment %s has no usable size", seg.ID), nil)
			}
			plan.RenderSize = natural
		}

		plan.VideoTrack.Insertions = append(plan.VideoTrack.Insertions, Insertion{
			SourceRef:      seg.SourceRef,
			SourceStart:    safeStart,
			SourceDuration: safeDuration,
			At:             cursor,
		})
		if audio != nil && seg.HasAudio {
			audio.Insertions = append(audio.Insertions, Insertion{
				SourceRef:      seg.SourceRef,
				SourceStart:    safeStart,
				SourceDuration: safeDuration,
				At:             cursor,
			})
		}

		transform := SegmentTransform(seg)
		if opts.CoverFit {
			transform = transform.Then(CoverFit(seg.RenderSize(), plan.RenderSize))
		}
		plan.Placements = append(plan.Placements, Placement{
			SegmentID:      seg.ID,
			Day:            seg.Day,
			OutputStart:    cursor,
			OutputDuration: safeDuration,
			SourceStart:    safeStart,
			Transform:      transform,
		})

		if opts.DateOverlays && seg.Day != "" {
			plan.Overlays = append(plan.Overlays, Overlay{
				Text:  seg.Day.String(),
				Start: cursor,
				End:   cursor + safeDuration,
			})
		}

		cursor += safeDuration
	}

	if len(plan.Placements) == 0 {
		return nil, services.Wrap(services.ErrNoSelectedSegments, "composition", "build", "every segment clamped to zero duration", nil)
	}
	plan.TotalDuration = cursor

	if audio != nil && len(audio.Insertions) > 0 {
		plan.AudioTrack = audio
	}

	if opts.Background != nil {
		plan.BackgroundVolume = timeline.BackgroundTrack{Volume: opts.Background.Volume}.ClampedVolume()
		plan.BackgroundTrack = loopBackground(*opts.Background, cursor)
		plan.BackgroundTrack.Volume = plan.BackgroundVolume
	}

	return plan, nil
}

// loopBackground repeats the background source until the inserted duration
// covers the timeline exactly, clipping the final pass.
func loopBackground(bg BackgroundAudio, total float64) *Track {
	track := &Track{}
	for at := 0.0; at < total; at += bg.Duration {
		length := bg.Duration
		if at+length > total {
			length = total - at
		}
		track.Insertions = append(track.Insertions, Insertion{
			SourceRef:      bg.SourceRef,
			SourceStart:    0,
			SourceDuration: length,
			At:             at,
		})
	}
	return track
}
