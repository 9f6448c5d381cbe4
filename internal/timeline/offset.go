package timeline

import (
	"math"
	"sync"
)

// OffsetIndex derives, from a List, the start time of every segment within the
// assembled timeline: the cumulative sum of prior segments' clamped trim
// durations in order. The index rebuilds lazily on the first read after a
// list mutation and serves from cache until the next one.
type OffsetIndex struct {
	list *List

	mu           sync.Mutex
	builtVersion uint64
	built        bool
	offsets      map[string]float64
	order        []string
	total        float64
}

// NewOffsetIndex returns an index bound to the given list.
func NewOffsetIndex(list *List) *OffsetIndex {
	return &OffsetIndex{list: list}
}

// OffsetFor returns the composition start time of the segment. The second
// return is false when the segment is not in the list.
func (x *OffsetIndex) OffsetFor(id string) (float64, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ensureLocked()
	offset, ok := x.offsets[id]
	return offset, ok
}

// TotalDuration returns the assembled timeline length: the sum of all
// included segments' clamped trim durations.
func (x *OffsetIndex) TotalDuration() float64 {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ensureLocked()
	return x.total
}

// ClipTimeToCompositionTime converts a time within one source clip into time
// within the assembled timeline. The clip time is clamped to the source
// duration and the result is clamped to be non-negative, so a preview
// composition holding only this segment can be seeked directly with the
// returned value minus the segment's offset.
func (x *OffsetIndex) ClipTimeToCompositionTime(id string, clipTime float64) (float64, bool) {
	seg, ok := x.list.Get(id)
	if !ok {
		return 0, false
	}
	offset, ok := x.OffsetFor(id)
	if !ok {
		return 0, false
	}
	safeStart, _ := seg.EffectiveWindow()
	clamped := math.Min(math.Max(clipTime, 0), seg.DurationSeconds)
	t := offset + clamped - safeStart
	if t < 0 {
		t = 0
	}
	return t, true
}

// SegmentAt returns the ID and order position of the segment whose placement
// covers the given composition time. Used by whole-timeline playback to
// publish the current segment index as the play head crosses boundaries. Time
// at or past the end reports the last included segment with ok=false.
func (x *OffsetIndex) SegmentAt(compositionTime float64) (id string, index int, ok bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ensureLocked()
	if len(x.order) == 0 {
		return "", -1, false
	}
	if compositionTime >= x.total {
		return x.order[len(x.order)-1], len(x.order) - 1, false
	}
	if compositionTime < 0 {
		compositionTime = 0
	}
	for i, segID := range x.order {
		start := x.offsets[segID]
		var end float64
		if i+1 < len(x.order) {
			end = x.offsets[x.order[i+1]]
		} else {
			end = x.total
		}
		if compositionTime >= start && compositionTime < end {
			return segID, i, true
		}
	}
	return x.order[len(x.order)-1], len(x.order) - 1, false
}

func (x *OffsetIndex) ensureLocked() {
	version := x.list.Version()
	if x.built && version == x.builtVersion {
		return
	}

	segments := x.list.Segments()
	offsets := make(map[string]float64, len(segments))
	order := make([]string, 0, len(segments))
	cursor := 0.0
	for _, seg := range segments {
		offsets[seg.ID] = cursor
		_, safeDuration := seg.EffectiveWindow()
		if safeDuration <= 0 {
			continue
		}
		order = append(order, seg.ID)
		cursor += safeDuration
	}

	x.offsets = offsets
	x.order = order
	x.total = cursor
	x.builtVersion = version
	x.built = true
}
