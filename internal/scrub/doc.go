// Package scrub drives interactive preview: loading drafts, segment-scoped
// and whole-timeline playback, and throttled seeking while a trim handle is
// dragged.
//
// The Controller is the single writer for preview state. Background work
// (probing, preview rebuilds) reports back through methods that check a
// generation counter, so a superseded rebuild can never clobber state the
// current one wrote. Drag gestures flow through an explicit Session value
// rather than closures over shared state; the segment list is only mutated
// when the drag ends.
package scrub
