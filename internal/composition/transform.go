package composition

import (
	"math"

	"dayreel/internal/timeline"
)

// Affine is a 2D affine transform in row-major 2x3 form:
//
//	x' = A*x + C*y + TX
//	y' = B*x + D*y + TY
type Affine struct {
	A, B, C, D, TX, TY float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Then composes transforms: the receiver is applied first, then next.
func (t Affine) Then(next Affine) Affine {
	return Affine{
		A:  next.A*t.A + next.C*t.B,
		B:  next.B*t.A + next.D*t.B,
		C:  next.A*t.C + next.C*t.D,
		D:  next.B*t.C + next.D*t.D,
		TX: next.A*t.TX + next.C*t.TY + next.TX,
		TY: next.B*t.TX + next.D*t.TY + next.TY,
	}
}

// Apply maps the point (x, y) through the transform.
func (t Affine) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

// NearlyEqual compares transforms within a floating tolerance.
func (t Affine) NearlyEqual(other Affine, tolerance float64) bool {
	diffs := []float64{
		t.A - other.A, t.B - other.B,
		t.C - other.C, t.D - other.D,
		t.TX - other.TX, t.TY - other.TY,
	}
	for _, d := range diffs {
		if math.Abs(d) > tolerance {
			return false
		}
	}
	return true
}

// Scaled appends a uniform scale about the origin.
func (t Affine) Scaled(factor float64) Affine {
	return t.Then(Affine{A: factor, D: factor})
}

// Translated appends a translation.
func (t Affine) Translated(dx, dy float64) Affine {
	return t.Then(Affine{A: 1, D: 1, TX: dx, TY: dy})
}

// QuarterTurn returns the transform rotating media of the given pre-rotation
// size by turns*90 degrees clockwise, translated so the result stays in the
// positive quadrant. Four turns with matched sizes compose to the identity.
func QuarterTurn(turns int, preSize timeline.Size) Affine {
	switch ((turns % 4) + 4) % 4 {
	case 1:
		return Affine{B: 1, C: -1, TX: preSize.Height}
	case 2:
		return Affine{A: -1, D: -1, TX: preSize.Width, TY: preSize.Height}
	case 3:
		return Affine{B: -1, C: 1, TY: preSize.Width}
	default:
		return Identity()
	}
}

// SegmentTransform composes the source orientation with the user rotation for
// a segment. Orientation is applied first against the natural size, then the
// user rotation against the oriented size; the order matters when translations
// are involved.
func SegmentTransform(seg timeline.Segment) Affine {
	orientation := QuarterTurn(seg.SourceRotation, seg.NaturalSize)
	user := QuarterTurn(seg.RotationQuarterTurns, seg.OrientedSize())
	return orientation.Then(user)
}

// CoverFit returns the uniform scale and centering translation that makes
// content of the given size fill the target completely, cropping overflow on
// one axis. Aspect is preserved.
func CoverFit(content, target timeline.Size) Affine {
	if content.IsZero() || target.IsZero() {
		return Identity()
	}
	scale := math.Max(target.Width/content.Width, target.Height/content.Height)
	scaledW := content.Width * scale
	scaledH := content.Height * scale
	return Identity().
		Scaled(scale).
		Translated((target.Width-scaledW)/2, (target.Height-scaledH)/2)
}
