// Package session persists per-day editing state as JSON records so trims,
// ordering, rotations, and audio choices survive restarts. Records reference
// source media by file name only; on restore they are merged onto freshly
// probed segments, and stale entries for media that disappeared are dropped.
package session
