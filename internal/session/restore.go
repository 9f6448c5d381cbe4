package session

import (
	"path/filepath"
	"sort"

	"dayreel/internal/timeline"
)

// Capture converts a draft snapshot into its persisted form.
func Capture(draft timeline.Draft) Record {
	record := Record{
		Day:               draft.Day,
		MuteOriginalAudio: draft.MuteOriginalAudio,
		RenderWidth:       draft.RenderSize.Width,
		RenderHeight:      draft.RenderSize.Height,
	}
	if draft.Background != nil {
		record.Background = &BackgroundRecord{
			Filename: filepath.Base(draft.Background.SourceRef),
			Volume:   draft.Background.ClampedVolume(),
		}
	}
	for _, seg := range draft.Segments {
		record.Segments = append(record.Segments, SegmentRecord{
			Filename:             filepath.Base(seg.SourceRef),
			Order:                seg.Order,
			TrimStart:            seg.TrimStart,
			TrimDuration:         seg.TrimDuration,
			RotationQuarterTurns: seg.RotationQuarterTurns,
		})
	}
	sort.Slice(record.Segments, func(i, j int) bool {
		return record.Segments[i].Order < record.Segments[j].Order
	})
	return record
}

// Restore merges a saved record onto freshly probed segments, matching by
// file name. Saved trims are clamped against the probed duration, so a record
// that drifted from the media on disk still restores to a playable state.
// Segments with no record entry keep their defaults and sort after the
// recorded ones; record entries whose media is gone are ignored.
func Restore(record Record, probed []timeline.Segment) []timeline.Segment {
	byName := make(map[string]SegmentRecord, len(record.Segments))
	for _, rec := range record.Segments {
		byName[rec.Filename] = rec
	}

	matched := make([]timeline.Segment, 0, len(probed))
	fresh := make([]timeline.Segment, 0)
	matchedOrder := make(map[string]int, len(probed))

	for _, seg := range probed {
		rec, ok := byName[filepath.Base(seg.SourceRef)]
		if !ok {
			fresh = append(fresh, seg)
			continue
		}
		seg.TrimStart, seg.TrimDuration = timeline.ClampTrim(rec.TrimStart, rec.TrimDuration, seg.DurationSeconds)
		seg.RotationQuarterTurns = ((rec.RotationQuarterTurns % 4) + 4) % 4
		matchedOrder[seg.ID] = rec.Order
		matched = append(matched, seg)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matchedOrder[matched[i].ID] < matchedOrder[matched[j].ID]
	})

	restored := append(matched, fresh...)
	for i := range restored {
		restored[i].Order = i
	}
	return restored
}
