package export

import (
	"strings"
	"testing"

	"dayreel/internal/composition"
	"dayreel/internal/config"
	"dayreel/internal/timeline"
)

func testRender() config.Render {
	return config.Render{Width: 1080, Height: 1920, Preset: "medium", CRF: 18}
}

func buildTestPlan(t *testing.T, opts composition.Options, segments ...timeline.Segment) *composition.Plan {
	t.Helper()
	plan, err := composition.Build(segments, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return plan
}

func portraitSegment(ref string, duration float64) timeline.Segment {
	return timeline.NewSegment(ref, duration, timeline.Size{Width: 1080, Height: 1920}, 0, true)
}

func TestBuildArgsBasicShape(t *testing.T) {
	segA := portraitSegment("/lib/a.mov", 10)
	segB := portraitSegment("/lib/b.mov", 10)
	segB.Order = 1
	plan := buildTestPlan(t, composition.Options{}, segA, segB)

	args := BuildArgs(plan, testRender(), "/out/clip.mp4.partial")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-i /lib/a.mov -i /lib/b.mov") {
		t.Fatalf("inputs missing or reordered: %s", joined)
	}
	if !strings.Contains(joined, "-map [vout] -map [aout]") {
		t.Fatalf("stream mapping wrong: %s", joined)
	}
	if !strings.Contains(joined, "-preset medium -crf 18") {
		t.Fatalf("encoder settings missing: %s", joined)
	}
	if !strings.Contains(joined, "-t 4.000") {
		t.Fatalf("output duration missing: %s", joined)
	}
	if args[len(args)-1] != "/out/clip.mp4.partial" {
		t.Fatalf("output path must be last, got %s", args[len(args)-1])
	}
}

func TestBuildFilterConcatAndTrims(t *testing.T) {
	segA := portraitSegment("/lib/a.mov", 10)
	segB := portraitSegment("/lib/b.mov", 10)
	segB.Order = 1
	segB.TrimStart = 3
	plan := buildTestPlan(t, composition.Options{}, segA, segB)

	filter, hasAudio := buildFilter(plan, testRender())
	if !hasAudio {
		t.Fatal("plan with audio must yield an audio stream")
	}
	if !strings.Contains(filter, "[0:v]trim=start=0.000:duration=2.000") {
		t.Fatalf("first trim missing: %s", filter)
	}
	if !strings.Contains(filter, "[1:v]trim=start=3.000:duration=2.000") {
		t.Fatalf("second trim missing: %s", filter)
	}
	if !strings.Contains(filter, "concat=n=2:v=1:a=1[vout][acat]") {
		t.Fatalf("concat wrong: %s", filter)
	}
	if !strings.Contains(filter, "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920") {
		t.Fatalf("cover scale missing: %s", filter)
	}
}

func TestBuildFilterRotation(t *testing.T) {
	seg := portraitSegment("/lib/a.mov", 10)
	seg.RotationQuarterTurns = 1
	plan := buildTestPlan(t, composition.Options{}, seg)

	filter, _ := buildFilter(plan, testRender())
	if !strings.Contains(filter, ",transpose=1,") {
		t.Fatalf("rotation missing: %s", filter)
	}

	seg.RotationQuarterTurns = 3
	plan = buildTestPlan(t, composition.Options{}, seg)
	filter, _ = buildFilter(plan, testRender())
	if !strings.Contains(filter, ",transpose=2,") {
		t.Fatalf("counterclockwise rotation missing: %s", filter)
	}
}

func TestBuildFilterSilenceForAudiolessSegment(t *testing.T) {
	withAudio := portraitSegment("/lib/a.mov", 10)
	silent := timeline.NewSegment("/lib/b.mov", 10, timeline.Size{Width: 1080, Height: 1920}, 0, false)
	silent.Order = 1
	plan := buildTestPlan(t, composition.Options{}, withAudio, silent)

	filter, hasAudio := buildFilter(plan, testRender())
	if !hasAudio {
		t.Fatal("mixed plan must still yield audio")
	}
	if !strings.Contains(filter, "[0:a]atrim=") {
		t.Fatalf("first segment audio missing: %s", filter)
	}
	if !strings.Contains(filter, "anullsrc=channel_layout=stereo") {
		t.Fatalf("silence fill missing: %s", filter)
	}
}

func TestBuildFilterMutedWithoutBackgroundHasNoAudio(t *testing.T) {
	plan := buildTestPlan(t, composition.Options{MuteOriginalAudio: true}, portraitSegment("/lib/a.mov", 10))

	filter, hasAudio := buildFilter(plan, testRender())
	if hasAudio {
		t.Fatal("muted plan without background must have no audio stream")
	}
	if strings.Contains(filter, "concat=n=1:v=1:a=1") {
		t.Fatalf("concat still carries audio: %s", filter)
	}

	args := BuildArgs(plan, testRender(), "/out/x.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-an") {
		t.Fatalf("-an missing: %s", joined)
	}
}

func TestBuildFilterBackgroundLoopAndMix(t *testing.T) {
	plan := buildTestPlan(t, composition.Options{
		Background: &composition.BackgroundAudio{SourceRef: "/music/song.m4a", Volume: 0.4, Duration: 1.5},
	}, portraitSegment("/lib/a.mov", 10))

	args := BuildArgs(plan, testRender(), "/out/x.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-stream_loop -1 -i /music/song.m4a") {
		t.Fatalf("background input missing: %s", joined)
	}

	filter, hasAudio := buildFilter(plan, testRender())
	if !hasAudio {
		t.Fatal("background plan must yield audio")
	}
	if !strings.Contains(filter, "[1:a]atrim=duration=2.000") {
		t.Fatalf("background trim missing: %s", filter)
	}
	if !strings.Contains(filter, "volume=0.400") {
		t.Fatalf("background volume missing: %s", filter)
	}
	if !strings.Contains(filter, "[acat][abg]amix=inputs=2:duration=first:normalize=0[aout]") {
		t.Fatalf("mix missing: %s", filter)
	}
}

func TestBuildFilterDateOverlays(t *testing.T) {
	segA := portraitSegment("/lib/a.mov", 10)
	segA.Day = timeline.Day("2025-06-14")
	segB := portraitSegment("/lib/b.mov", 10)
	segB.Day = timeline.Day("2025-06-15")
	segB.Order = 1
	plan := buildTestPlan(t, composition.Options{
		RenderSize:   timeline.Size{Width: 1080, Height: 1920},
		CoverFit:     true,
		DateOverlays: true,
	}, segA, segB)

	filter, _ := buildFilter(plan, testRender())
	if !strings.Contains(filter, "drawtext=text='2025-06-14'") {
		t.Fatalf("overlay text missing: %s", filter)
	}
	// Half-open windows: at the t=2 boundary only the second overlay may be
	// enabled. between() would light both.
	if !strings.Contains(filter, "enable='gte(t,0.000)*lt(t,2.000)'") {
		t.Fatalf("first overlay window missing: %s", filter)
	}
	if !strings.Contains(filter, "enable='gte(t,2.000)*lt(t,4.000)'") {
		t.Fatalf("second overlay window missing: %s", filter)
	}
	if strings.Contains(filter, "between(") {
		t.Fatalf("overlay windows must not be closed intervals: %s", filter)
	}
	if !strings.Contains(filter, "[vcat]drawtext") || !strings.HasSuffix(filterSegmentWithSuffix(filter, "[vout]"), "[vout]") {
		t.Fatalf("overlay chain must end in [vout]: %s", filter)
	}
}

func filterSegmentWithSuffix(filter, suffix string) string {
	for _, part := range strings.Split(filter, ";") {
		if strings.HasSuffix(part, suffix) {
			return part
		}
	}
	return ""
}

func TestQuarterTurnsFromTransform(t *testing.T) {
	size := timeline.Size{Width: 1080, Height: 1920}
	for turns := 0; turns < 4; turns++ {
		affine := composition.QuarterTurn(turns, size)
		if got := quarterTurns(affine); got != turns {
			t.Fatalf("quarterTurns(QuarterTurn(%d)) = %d", turns, got)
		}
		// Cover-fit composition keeps the rotation recognizable.
		composed := affine.Then(composition.CoverFit(size.Swapped(), size))
		if got := quarterTurns(composed); got != turns {
			t.Fatalf("quarterTurns(composed %d) = %d", turns, got)
		}
	}
}

func TestOutputDimensionsFallBackAndStayEven(t *testing.T) {
	plan := &composition.Plan{RenderSize: timeline.Size{Width: 1081, Height: 1919}}
	w, h := outputDimensions(plan, testRender())
	if w != 1080 || h != 1918 {
		t.Fatalf("dimensions = %dx%d", w, h)
	}

	plan = &composition.Plan{}
	w, h = outputDimensions(plan, testRender())
	if w != 1080 || h != 1920 {
		t.Fatalf("fallback dimensions = %dx%d", w, h)
	}
}
