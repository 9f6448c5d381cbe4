package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// testContext mirrors t.Context (Go 1.24+): a context canceled at test cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("ffprobe exited 1")
	err := Wrap(ErrAssetUnavailable, "mediasource", "probe", "clip.mp4", base)
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("expected wrapped error to match ErrAssetUnavailable, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to retain cause, got %v", err)
	}
	want := "asset unavailable: mediasource: probe: clip.mp4: ffprobe exited 1"
	if err.Error() != want {
		t.Fatalf("unexpected message %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsToValidation(t *testing.T) {
	err := Wrap(nil, "builder", "build", "", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected nil marker to default to ErrValidation, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrExportFailed, "", "", "", nil)
	if err.Error() != "export failed: engine failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTerminalClassification(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		terminal bool
	}{
		{"export", Wrap(ErrExportFailed, "export", "render", "", nil), true},
		{"no segments", ErrNoSelectedSegments, true},
		{"track", Wrap(ErrUnableToCreateTrack, "builder", "video track", "", nil), true},
		{"background missing", ErrBackgroundTrackMissing, true},
		{"asset", Wrap(ErrAssetUnavailable, "mediasource", "probe", "", nil), false},
		{"thumbnail", Wrap(ErrThumbnailCreation, "thumbnails", "frame", "", nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := Terminal(tc.err); got != tc.terminal {
			t.Errorf("%s: Terminal = %v, want %v", tc.name, got, tc.terminal)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithSegmentID(testContext(t), "seg-1")
	ctx = WithDay(ctx, "2026-03-14")
	ctx = WithComponent(ctx, "scrub")

	if id, ok := SegmentIDFromContext(ctx); !ok || id != "seg-1" {
		t.Fatalf("segment id round trip failed: %q %v", id, ok)
	}
	if day, ok := DayFromContext(ctx); !ok || day != "2026-03-14" {
		t.Fatalf("day round trip failed: %q %v", day, ok)
	}
	if c, ok := ComponentFromContext(ctx); !ok || c != "scrub" {
		t.Fatalf("component round trip failed: %q %v", c, ok)
	}

	if _, ok := SegmentIDFromContext(testContext(t)); ok {
		t.Fatal("expected empty context to carry no segment id")
	}
}
