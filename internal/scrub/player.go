package scrub

import (
	"context"

	"dayreel/internal/composition"
)

// Player is the live preview surface the controller drives. Implementations
// wrap whatever renders the composition; the controller only ever touches
// this interface.
type Player interface {
	// Load replaces the player's current item with the given plan.
	Load(ctx context.Context, plan *composition.Plan) error

	// SeekTo moves the play head to the given item-local time. A non-zero
	// tolerance permits the backend to land on a nearby cheap frame.
	SeekTo(seconds, tolerance float64)

	Play()
	Pause()

	// CurrentTime reports the item-local play head position.
	CurrentTime() float64
}
