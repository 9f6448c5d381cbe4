package session

import (
	"testing"

	"dayreel/internal/timeline"
)

func probedSegment(ref string, duration float64) timeline.Segment {
	return timeline.NewSegment(ref, duration, timeline.Size{Width: 1080, Height: 1920}, 0, true)
}

func TestCaptureUsesBaseNamesAndOrder(t *testing.T) {
	segA := probedSegment("/library/2025-06-14/clip-a.mov", 10)
	segB := probedSegment("/library/2025-06-14/clip-b.mov", 10)
	segA.Order = 1
	segB.Order = 0
	segB.RotationQuarterTurns = 3

	draft := timeline.Draft{
		Day:      timeline.Day("2025-06-14"),
		Segments: []timeline.Segment{segA, segB},
		Background: &timeline.BackgroundTrack{
			SourceRef: "/library/music/song.m4a",
			Volume:    1.8,
		},
		RenderSize: timeline.Size{Width: 1080, Height: 1920},
	}

	record := Capture(draft)
	if record.Day != draft.Day {
		t.Fatalf("day = %s", record.Day)
	}
	if record.RenderWidth != 1080 || record.RenderHeight != 1920 {
		t.Fatalf("render size = %vx%v", record.RenderWidth, record.RenderHeight)
	}
	if record.Background.Filename != "song.m4a" {
		t.Fatalf("background filename = %s", record.Background.Filename)
	}
	if record.Background.Volume != 1 {
		t.Fatalf("background volume = %v, want clamped to 1", record.Background.Volume)
	}
	if len(record.Segments) != 2 {
		t.Fatalf("got %d segment records", len(record.Segments))
	}
	if record.Segments[0].Filename != "clip-b.mov" || record.Segments[1].Filename != "clip-a.mov" {
		t.Fatalf("order = %s, %s", record.Segments[0].Filename, record.Segments[1].Filename)
	}
	if record.Segments[0].RotationQuarterTurns != 3 {
		t.Fatalf("rotation = %d", record.Segments[0].RotationQuarterTurns)
	}
}

func TestRestoreAppliesRecordedStateInOrder(t *testing.T) {
	record := Record{
		Day: timeline.Day("2025-06-14"),
		Segments: []SegmentRecord{
			{Filename: "clip-a.mov", Order: 1, TrimStart: 2, TrimDuration: 3},
			{Filename: "clip-b.mov", Order: 0, TrimStart: 1, TrimDuration: 2, RotationQuarterTurns: 1},
		},
	}
	probed := []timeline.Segment{
		probedSegment("/library/clip-a.mov", 10),
		probedSegment("/library/clip-b.mov", 10),
	}

	restored := Restore(record, probed)
	if len(restored) != 2 {
		t.Fatalf("got %d segments", len(restored))
	}
	if restored[0].SourceRef != "/library/clip-b.mov" {
		t.Fatalf("first segment = %s, recorded order not applied", restored[0].SourceRef)
	}
	if restored[0].Order != 0 || restored[1].Order != 1 {
		t.Fatalf("orders = %d, %d", restored[0].Order, restored[1].Order)
	}
	if restored[0].TrimStart != 1 || restored[0].TrimDuration != 2 {
		t.Fatalf("trim = %v + %v", restored[0].TrimStart, restored[0].TrimDuration)
	}
	if restored[0].RotationQuarterTurns != 1 {
		t.Fatalf("rotation = %d", restored[0].RotationQuarterTurns)
	}
}

func TestRestoreClampsDriftedTrims(t *testing.T) {
	// The record was written against a longer copy of the clip.
	record := Record{
		Segments: []SegmentRecord{
			{Filename: "clip-a.mov", TrimStart: 8, TrimDuration: 5},
		},
	}
	probed := []timeline.Segment{probedSegment("/library/clip-a.mov", 10)}

	restored := Restore(record, probed)
	if restored[0].TrimStart != 8 {
		t.Fatalf("trim start = %v", restored[0].TrimStart)
	}
	if restored[0].TrimDuration != 2 {
		t.Fatalf("trim duration = %v, want clamped to remaining 2", restored[0].TrimDuration)
	}
}

func TestRestoreKeepsFreshSegmentsAfterRecordedOnes(t *testing.T) {
	record := Record{
		Segments: []SegmentRecord{
			{Filename: "clip-b.mov", Order: 0, TrimStart: 1, TrimDuration: 2},
			{Filename: "gone.mov", Order: 1},
		},
	}
	probed := []timeline.Segment{
		probedSegment("/library/clip-new.mov", 6),
		probedSegment("/library/clip-b.mov", 10),
	}

	restored := Restore(record, probed)
	if len(restored) != 2 {
		t.Fatalf("got %d segments", len(restored))
	}
	if restored[0].SourceRef != "/library/clip-b.mov" {
		t.Fatalf("recorded segment must sort first, got %s", restored[0].SourceRef)
	}
	if restored[1].SourceRef != "/library/clip-new.mov" {
		t.Fatalf("fresh segment = %s", restored[1].SourceRef)
	}
	// The fresh segment keeps its probe defaults.
	if restored[1].TrimStart != 0 || restored[1].TrimDuration != 2 {
		t.Fatalf("fresh trim = %v + %v", restored[1].TrimStart, restored[1].TrimDuration)
	}
}

func TestRestoreNormalizesRotation(t *testing.T) {
	record := Record{
		Segments: []SegmentRecord{
			{Filename: "clip-a.mov", RotationQuarterTurns: -1, TrimDuration: 2},
		},
	}
	probed := []timeline.Segment{probedSegment("/library/clip-a.mov", 10)}

	restored := Restore(record, probed)
	if restored[0].RotationQuarterTurns != 3 {
		t.Fatalf("rotation = %d, want 3", restored[0].RotationQuarterTurns)
	}
}
