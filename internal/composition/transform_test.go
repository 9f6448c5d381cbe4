package composition

import (
	"testing"

	"dayreel/internal/timeline"
)

func TestQuarterTurnMapsCorners(t *testing.T) {
	size := timeline.Size{Width: 1920, Height: 1080}

	// 90 degrees clockwise: top-left corner lands at the top-right of the
	// rotated frame.
	q1 := QuarterTurn(1, size)
	if x, y := q1.Apply(0, 0); x != 1080 || y != 0 {
		t.Fatalf("q1 origin: got (%v, %v), want (1080, 0)", x, y)
	}
	if x, y := q1.Apply(1920, 1080); x != 0 || y != 1920 {
		t.Fatalf("q1 far corner: got (%v, %v), want (0, 1920)", x, y)
	}

	q2 := QuarterTurn(2, size)
	if x, y := q2.Apply(0, 0); x != 1920 || y != 1080 {
		t.Fatalf("q2 origin: got (%v, %v), want (1920, 1080)", x, y)
	}

	q3 := QuarterTurn(3, size)
	if x, y := q3.Apply(0, 0); x != 0 || y != 1920 {
		t.Fatalf("q3 origin: got (%v, %v), want (0, 1920)", x, y)
	}
}

func TestQuarterTurnPeriodicity(t *testing.T) {
	size := timeline.Size{Width: 1920, Height: 1080}
	combined := Identity()
	current := size
	for i := 0; i < 4; i++ {
		combined = combined.Then(QuarterTurn(1, current))
		current = current.Swapped()
	}
	if !combined.NearlyEqual(Identity(), 1e-9) {
		t.Fatalf("four quarter turns should compose to identity, got %+v", combined)
	}
}

func TestQuarterTurnNormalizesTurnCount(t *testing.T) {
	size := timeline.Size{Width: 100, Height: 50}
	if QuarterTurn(5, size) != QuarterTurn(1, size) {
		t.Fatal("turn count should wrap modulo 4")
	}
	if QuarterTurn(-1, size) != QuarterTurn(3, size) {
		t.Fatal("negative turns should wrap modulo 4")
	}
	if QuarterTurn(0, size) != Identity() {
		t.Fatal("zero turns should be identity")
	}
}

func TestSegmentTransformAppliesOrientationFirst(t *testing.T) {
	seg := timeline.NewSegment("a.mp4", 10, timeline.Size{Width: 1920, Height: 1080}, 1, true)
	seg.RotationQuarterTurns = 1

	got := SegmentTransform(seg)
	// Orientation rotates 1920x1080 into 1080x1920; the user turn rotates
	// that into 1920x1080 again. Combined: 180 degrees.
	want := QuarterTurn(1, timeline.Size{Width: 1920, Height: 1080}).
		Then(QuarterTurn(1, timeline.Size{Width: 1080, Height: 1920}))
	if !got.NearlyEqual(want, 1e-9) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if !got.NearlyEqual(QuarterTurn(2, timeline.Size{Width: 1920, Height: 1080}), 1e-9) {
		t.Fatalf("orientation+user turn should equal a 180 degree turn, got %+v", got)
	}
}

func TestCoverFitFillsTarget(t *testing.T) {
	content := timeline.Size{Width: 1920, Height: 1080}
	target := timeline.Size{Width: 1080, Height: 1920}
	fit := CoverFit(content, target)

	// Height is the constraining axis: scale = 1920/1080, width overflows
	// and is centered.
	scale := 1920.0 / 1080.0
	midX, midY := fit.Apply(content.Width/2, content.Height/2)
	if !nearly(midX, target.Width/2) || !nearly(midY, target.Height/2) {
		t.Fatalf("content center should land on target center, got (%v, %v)", midX, midY)
	}
	x0, y0 := fit.Apply(0, 0)
	if !nearly(y0, 0) {
		t.Fatalf("top edge should touch target top, got y=%v", y0)
	}
	wantX0 := (target.Width - content.Width*scale) / 2
	if !nearly(x0, wantX0) {
		t.Fatalf("left edge: got %v, want %v", x0, wantX0)
	}
}

func TestCoverFitDegenerateSizes(t *testing.T) {
	if CoverFit(timeline.Size{}, timeline.Size{Width: 10, Height: 10}) != Identity() {
		t.Fatal("zero content should fall back to identity")
	}
	if CoverFit(timeline.Size{Width: 10, Height: 10}, timeline.Size{}) != Identity() {
		t.Fatal("zero target should fall back to identity")
	}
}

func nearly(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
