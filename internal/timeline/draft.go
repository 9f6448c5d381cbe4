package timeline

import (
	"fmt"
	"time"
)

// Day is a calendar day key: the clip's local date, normalized so the same
// wall-clock day maps to the same key regardless of the zone the process runs
// in later. Stored and compared as YYYY-MM-DD.
type Day string

// DayOf returns the day key for the local date of t.
func DayOf(t time.Time) Day {
	year, month, day := t.Date()
	return Day(fmt.Sprintf("%04d-%02d-%02d", year, int(month), day))
}

// ParseDay validates a YYYY-MM-DD key.
func ParseDay(value string) (Day, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return "", fmt.Errorf("parse day %q: %w", value, err)
	}
	return DayOf(t), nil
}

// Time returns the UTC midnight instant for the day key.
func (d Day) Time() time.Time {
	t, err := time.ParseInLocation("2006-01-02", string(d), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) String() string { return string(d) }

// BackgroundTrack selects an audio source to loop under the whole timeline.
type BackgroundTrack struct {
	SourceRef string
	// Volume is the mix gain in [0,1]; values outside are clamped.
	Volume float64
}

// ClampedVolume returns the volume bounded to [0,1].
func (b BackgroundTrack) ClampedVolume() float64 {
	switch {
	case b.Volume < 0:
		return 0
	case b.Volume > 1:
		return 1
	default:
		return b.Volume
	}
}

// Draft is the immutable result of an editing session, handed to the builder
// and the export pipeline. It snapshots segments by value so later list
// mutations cannot reach a build in flight.
type Draft struct {
	Day               Day
	Segments          []Segment
	MuteOriginalAudio bool
	Background        *BackgroundTrack

	// RenderSize overrides the output size. Zero means the build renders at
	// the first segment's rotated natural size.
	RenderSize Size
}

// Snapshot captures the list's current state into a Draft.
func (l *List) Snapshot(day Day, mute bool, background *BackgroundTrack, renderSize Size) Draft {
	var bg *BackgroundTrack
	if background != nil {
		copied := *background
		bg = &copied
	}
	return Draft{
		Day:               day,
		Segments:          l.Segments(),
		MuteOriginalAudio: mute,
		Background:        bg,
		RenderSize:        renderSize,
	}
}
