package main

import (
	"context"
	"fmt"
	"path/filepath"

	"dayreel/internal/composition"
	"dayreel/internal/logging"
	"dayreel/internal/mediasource"
	"dayreel/internal/services"
	"dayreel/internal/session"
	"dayreel/internal/timeline"
)

type composeOptions struct {
	mute             bool
	background       string
	backgroundVolume float64
	coverFit         bool
	dateOverlays     bool
	renderSize       timeline.Size
}

// composeDay probes a day directory, restores the saved editing session when
// one exists, and assembles the render plan. Unreadable files are skipped
// with a warning so one corrupt clip never blocks the day.
func composeDay(ctx context.Context, cc *commandContext, src mediasource.Source, dir string, day timeline.Day, opts composeOptions) (*composition.Plan, timeline.Draft, error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return nil, timeline.Draft{}, err
	}
	logger := cc.loggerValue()

	refs, err := listMedia(dir)
	if err != nil {
		return nil, timeline.Draft{}, err
	}
	if len(refs) == 0 {
		return nil, timeline.Draft{}, fmt.Errorf("no media files in %s", dir)
	}

	segments := make([]timeline.Segment, 0, len(refs))
	for _, ref := range refs {
		seg, probeErr := mediasource.NewSegment(ctx, src, ref)
		if probeErr != nil {
			logger.Warn("skipping unreadable media",
				logging.String("source", ref),
				logging.Error(probeErr))
			continue
		}
		seg.Day = day
		seg.Order = len(segments)
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return nil, timeline.Draft{}, fmt.Errorf("no usable media in %s", dir)
	}

	mute := opts.mute
	background := opts.background
	backgroundVolume := opts.backgroundVolume

	store := session.NewStore(cfg.Paths.SessionDir, logger)
	record, found, err := store.Load(day)
	if err != nil {
		return nil, timeline.Draft{}, err
	}
	if found {
		segments = session.Restore(record, segments)
		for i := range segments {
			segments[i].Day = day
		}
		mute = mute || record.MuteOriginalAudio
		if opts.renderSize.Width == 0 && record.RenderWidth > 0 && record.RenderHeight > 0 {
			opts.renderSize = timeline.Size{Width: record.RenderWidth, Height: record.RenderHeight}
		}
		if background == "" && record.Background != nil {
			background = filepath.Join(dir, record.Background.Filename)
			backgroundVolume = record.Background.Volume
		}
	}

	buildOpts := composition.Options{
		MuteOriginalAudio: mute,
		RenderSize:        opts.renderSize,
		CoverFit:          opts.coverFit,
		DateOverlays:      opts.dateOverlays,
	}
	if background != "" {
		info, probeErr := src.Probe(ctx, background)
		if probeErr != nil {
			return nil, timeline.Draft{}, services.Wrap(services.ErrBackgroundTrackMissing, "compose", "probe background track", background, probeErr)
		}
		buildOpts.Background = &composition.BackgroundAudio{
			SourceRef: background,
			Volume:    backgroundVolume,
			Duration:  info.DurationSeconds,
		}
	}

	plan, err := composition.Build(segments, buildOpts)
	if err != nil {
		return nil, timeline.Draft{}, err
	}

	draft := timeline.Draft{
		Day:               day,
		Segments:          segments,
		MuteOriginalAudio: mute,
		RenderSize:        opts.renderSize,
	}
	if background != "" {
		draft.Background = &timeline.BackgroundTrack{SourceRef: background, Volume: backgroundVolume}
	}
	return plan, draft, nil
}
