// Package thumbnails generates low-resolution proxy frames for the scrub
// strip, off the interactive path.
//
// Frame times are fixed buckets over a segment's full untrimmed duration, so
// the strip stays stable while trim bounds move. Generation emits frames
// incrementally over a channel and observes cooperative cancellation; a Strip
// checks segment identity before accepting a frame so stale results from a
// superseded segment are discarded rather than written back.
//
// The Manager owns one strip per segment. When a segment rotates, the strip's
// frames turn in place for immediate feedback and a full regeneration is
// scheduled to replace them from source.
package thumbnails
