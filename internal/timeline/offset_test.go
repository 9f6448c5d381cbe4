package timeline

import (
	"math"
	"testing"
)

func buildList(t *testing.T, durations ...float64) (*List, []Segment) {
	t.Helper()
	list := NewList()
	segs := make([]Segment, 0, len(durations))
	for _, d := range durations {
		seg := testSegment("clip.mp4", d)
		if err := list.Append(seg); err != nil {
			t.Fatalf("append: %v", err)
		}
		segs = append(segs, seg)
	}
	return list, segs
}

func TestOffsetsAreCumulative(t *testing.T) {
	list, segs := buildList(t, 10, 5)
	idx := NewOffsetIndex(list)

	if off, ok := idx.OffsetFor(segs[0].ID); !ok || off != 0 {
		t.Fatalf("first offset: got %v ok=%v", off, ok)
	}
	if off, ok := idx.OffsetFor(segs[1].ID); !ok || off != 2 {
		t.Fatalf("second offset: got %v ok=%v, want 2", off, ok)
	}
	if total := idx.TotalDuration(); total != 4 {
		t.Fatalf("total duration: got %v, want 4", total)
	}
}

func TestOffsetMonotonicity(t *testing.T) {
	list, segs := buildList(t, 10, 7, 3, 12)
	list.SetTrim(segs[1].ID, 1, 4)
	list.SetTrim(segs[3].ID, 0, 6)
	idx := NewOffsetIndex(list)

	prevOffset := 0.0
	prevDuration := 0.0
	for i, seg := range list.Segments() {
		off, ok := idx.OffsetFor(seg.ID)
		if !ok {
			t.Fatalf("segment %d missing offset", i)
		}
		if i == 0 {
			if off != 0 {
				t.Fatalf("first offset must be 0, got %v", off)
			}
		} else if math.Abs(off-(prevOffset+prevDuration)) > 1e-9 {
			t.Fatalf("segment %d: offset %v != previous offset %v + duration %v", i, off, prevOffset, prevDuration)
		}
		prevOffset = off
		_, prevDuration = seg.EffectiveWindow()
	}
	if math.Abs(idx.TotalDuration()-(prevOffset+prevDuration)) > 1e-9 {
		t.Fatalf("total %v != last offset %v + duration %v", idx.TotalDuration(), prevOffset, prevDuration)
	}
}

func TestOffsetIndexRebuildsLazily(t *testing.T) {
	list, segs := buildList(t, 10, 5)
	idx := NewOffsetIndex(list)

	if off, _ := idx.OffsetFor(segs[1].ID); off != 2 {
		t.Fatalf("initial offset %v, want 2", off)
	}

	list.SetTrim(segs[0].ID, 0, 5)
	if off, _ := idx.OffsetFor(segs[1].ID); off != 5 {
		t.Fatalf("offset after trim change %v, want 5", off)
	}

	// Unchanged list serves from cache: repeated reads agree.
	first, _ := idx.OffsetFor(segs[1].ID)
	second, _ := idx.OffsetFor(segs[1].ID)
	if first != second {
		t.Fatalf("cached reads disagree: %v vs %v", first, second)
	}
}

func TestSkippedSegmentsContributeNothing(t *testing.T) {
	list, segs := buildList(t, 10, 0, 5)
	idx := NewOffsetIndex(list)

	if total := idx.TotalDuration(); total != 4 {
		t.Fatalf("total %v, want 4 (zero-duration segment skipped)", total)
	}
	offSkipped, ok := idx.OffsetFor(segs[1].ID)
	if !ok {
		t.Fatal("skipped segment still has an offset")
	}
	offNext, _ := idx.OffsetFor(segs[2].ID)
	if offSkipped != offNext {
		t.Fatalf("skipped segment offset %v should equal next segment offset %v", offSkipped, offNext)
	}
}

func TestClipTimeToCompositionTime(t *testing.T) {
	list, segs := buildList(t, 10, 5)
	list.SetTrim(segs[1].ID, 1, 3)
	idx := NewOffsetIndex(list)

	// Second segment starts at 2.0; clip time 1.0 is its trim start.
	if got, ok := idx.ClipTimeToCompositionTime(segs[1].ID, 1.0); !ok || got != 2.0 {
		t.Fatalf("got %v ok=%v, want 2.0", got, ok)
	}
	// Clip time is clamped into the source duration.
	if got, _ := idx.ClipTimeToCompositionTime(segs[1].ID, 99); got != 2.0+5-1 {
		t.Fatalf("got %v, want %v", got, 2.0+5-1)
	}
	// Clip time before the trim start clamps to a non-negative result.
	if got, _ := idx.ClipTimeToCompositionTime(segs[0].ID, -5); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
	if _, ok := idx.ClipTimeToCompositionTime("missing", 1); ok {
		t.Fatal("expected unknown segment to report false")
	}
}

func TestScrubProgressBijection(t *testing.T) {
	list, segs := buildList(t, 10, 5)
	idx := NewOffsetIndex(list)
	seg, _ := list.Get(segs[0].ID)
	maxStart := seg.MaxTrimStart()

	prev := -1.0
	for p := 0.0; p <= 1.0; p += 0.05 {
		got, ok := idx.ClipTimeToCompositionTime(seg.ID, p*maxStart)
		if !ok {
			t.Fatal("conversion failed")
		}
		if got < prev {
			t.Fatalf("conversion not monotonic at p=%v: %v < %v", p, got, prev)
		}
		prev = got
	}

	if start, _ := idx.ClipTimeToCompositionTime(seg.ID, 0); start != 0 {
		t.Fatalf("p=0 should map to composition time 0, got %v", start)
	}
}

func TestSegmentAt(t *testing.T) {
	list, segs := buildList(t, 10, 5, 8)
	idx := NewOffsetIndex(list)
	// Trim durations default to 2s each: boundaries at 2 and 4, total 6.

	cases := []struct {
		t      float64
		wantID string
		wantOK bool
	}{
		{0, segs[0].ID, true},
		{1.99, segs[0].ID, true},
		{2, segs[1].ID, true},
		{4.5, segs[2].ID, true},
		{6, segs[2].ID, false},
		{-1, segs[0].ID, true},
	}
	for _, tc := range cases {
		id, _, ok := idx.SegmentAt(tc.t)
		if id != tc.wantID || ok != tc.wantOK {
			t.Errorf("SegmentAt(%v) = %s ok=%v, want %s ok=%v", tc.t, id, ok, tc.wantID, tc.wantOK)
		}
	}

	empty := NewOffsetIndex(NewList())
	if _, _, ok := empty.SegmentAt(0); ok {
		t.Fatal("empty index should report no segment")
	}
}
