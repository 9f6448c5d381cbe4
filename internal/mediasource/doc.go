// Package mediasource is the media backend boundary: probing source clips for
// duration, size, orientation and track availability, and extracting single
// frames for thumbnails.
//
// Source is the injected capability the rest of the engine consumes. The
// shipped implementation shells out to ffprobe and ffmpeg; tests substitute a
// fake. No codec assumptions are made beyond "returns a track or fails".
package mediasource
