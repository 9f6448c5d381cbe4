// Package composition assembles an ordered segment list into a renderable
// plan: per-segment time-range insertions on a video track, optional original
// and background audio tracks, per-placement affine transforms, and optional
// date overlays for monthly compilations.
//
// Build is a pure function over its inputs. The returned Plan is a value; any
// segment mutation produces a new plan rather than editing an old one.
package composition
