package thumbnails

import (
	"context"
	"image"
	"log/slog"
	"math"

	"dayreel/internal/config"
	"dayreel/internal/logging"
	"dayreel/internal/mediasource"
	"dayreel/internal/services"
	"dayreel/internal/timeline"
)

// Frame is one proxy thumbnail bucket. Image is nil until generated, and
// stays nil for buckets whose extraction failed.
type Frame struct {
	Index      int
	SourceTime float64
	Length     float64
	Image      image.Image
}

// Pipeline generates proxy frames through the media backend.
type Pipeline struct {
	source       mediasource.Source
	logger       *slog.Logger
	maxFrames    int
	baseInterval float64
	proxyHeight  int
}

// NewPipeline constructs a pipeline with the configured bounds.
func NewPipeline(source mediasource.Source, logger *slog.Logger, cfg config.Thumbnails) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	maxFrames := cfg.MaxFrames
	if maxFrames <= 0 {
		maxFrames = 80
	}
	baseInterval := cfg.BaseIntervalSeconds
	if baseInterval <= 0 {
		baseInterval = 0.5
	}
	return &Pipeline{
		source:       source,
		logger:       logger,
		maxFrames:    maxFrames,
		baseInterval: baseInterval,
		proxyHeight:  cfg.ProxyHeight,
	}
}

// Buckets lays fixed time buckets over the full untrimmed duration. The
// bucket width grows past the base interval when needed to respect the frame
// cap; the final bucket absorbs the remainder.
func Buckets(duration, baseInterval float64, maxFrames int) []Frame {
	if duration <= 0 || baseInterval <= 0 || maxFrames <= 0 {
		return nil
	}
	width := math.Max(baseInterval, duration/float64(maxFrames))
	count := int(math.Ceil(duration / width))
	if count > maxFrames {
		count = maxFrames
	}
	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * width
		length := width
		if start+length > duration {
			length = duration - start
		}
		frames = append(frames, Frame{Index: i, SourceTime: start, Length: length})
	}
	return frames
}

// Generate produces the segment's proxy frames incrementally. The returned
// channel is finite and non-restartable: it closes once all buckets are
// emitted or the context is cancelled, and a cancelled run emits nothing
// further. Failed buckets are emitted without an image; only the frame that
// failed is lost, not the run.
func (p *Pipeline) Generate(ctx context.Context, seg timeline.Segment) <-chan Frame {
	out := make(chan Frame)
	buckets := Buckets(seg.DurationSeconds, p.baseInterval, p.maxFrames)
	logger := logging.WithContext(services.WithSegmentID(services.WithComponent(ctx, "thumbnails"), seg.ID), p.logger)

	go func() {
		defer close(out)
		for _, frame := range buckets {
			if ctx.Err() != nil {
				return
			}
			img, err := p.source.ExtractFrame(ctx, seg.SourceRef, frame.SourceTime, p.proxyHeight)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("proxy frame generation failed",
					logging.Int("frame_index", frame.Index),
					logging.Float64("source_time", frame.SourceTime),
					logging.Error(err))
			} else {
				frame.Image = img
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
		logger.Debug("proxy frames complete", logging.Int("frames", len(buckets)))
	}()

	return out
}
