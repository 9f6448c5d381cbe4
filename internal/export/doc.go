// Package export renders an assembled plan to a single MP4 through ffmpeg.
// One export runs at a time, guarded in-process by state and across processes
// by a file lock on the library directory. Output lands in a temp file and is
// renamed into place only after ffmpeg exits cleanly, so a crashed or
// cancelled export never leaves a partial clip behind. Progress is read from
// ffmpeg's machine-readable progress stream.
package export
