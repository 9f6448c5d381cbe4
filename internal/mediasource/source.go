package mediasource

import (
	"context"
	"image"

	"dayreel/internal/timeline"
)

// AssetInfo is the result of probing one source clip.
type AssetInfo struct {
	DurationSeconds float64
	NaturalSize     timeline.Size
	// RotationQuarterTurns is the container display rotation in clockwise
	// quarter turns.
	RotationQuarterTurns int
	HasVideo             bool
	HasAudio             bool
}

// Source is the media backend capability surface the engine requires.
type Source interface {
	// Probe resolves duration, natural size, orientation and track
	// availability for the referenced media.
	Probe(ctx context.Context, ref string) (AssetInfo, error)

	// ExtractFrame decodes a single frame at the given time, scaled to the
	// given height (0 keeps the natural size).
	ExtractFrame(ctx context.Context, ref string, atSeconds float64, height int) (image.Image, error)
}

// NewSegment probes the referenced media and constructs a timeline segment
// from the result. This is the segment lifecycle entry point: segments exist
// only once probing has resolved their duration, size and orientation.
func NewSegment(ctx context.Context, src Source, ref string) (timeline.Segment, error) {
	info, err := src.Probe(ctx, ref)
	if err != nil {
		return timeline.Segment{}, err
	}
	return timeline.NewSegment(ref, info.DurationSeconds, info.NaturalSize, info.RotationQuarterTurns, info.HasAudio), nil
}
