// Package timeline holds the mutable segment model and the derived offset
// index that maps segment-local time onto assembled-timeline time.
//
// A List is the single source of truth for an editing session: ordered
// segments with their trim windows and rotation state. Every mutation bumps a
// version counter; the OffsetIndex compares its built version against the
// list's on each read and recomputes lazily, so dozens of lookups during a
// drag gesture cost one O(n) pass.
//
// Trim values are clamped, never rejected. A segment whose clamped duration
// reaches zero contributes nothing to the timeline but stays in the list.
package timeline
