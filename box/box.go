// Package box provides the axis aligned bounding box primitives shared by
// the encode, postprocess and evaluate pipeline stages.
package box

import (
	"github.com/chewxy/math32"
)

// Box is an axis aligned rectangle in corner form. Coordinates are in a
// single consistent space, either full image pixels or grid units, each
// operation documents which it expects. A well formed Box has X2 >= X1 and
// Y2 >= Y1.
type Box struct {
	X1 float32
	Y1 float32
	X2 float32
	Y2 float32
}

// CenterBox is an axis aligned rectangle in center form, being the box
// center coordinates with its width and height
type CenterBox struct {
	CX float32
	CY float32
	W  float32
	H  float32
}

// FromMinMax creates a Box from coordinates in the (xMin, xMax, yMin, yMax)
// axis order used by the upstream annotation formats
func FromMinMax(xMin, xMax, yMin, yMax float32) Box {
	return Box{X1: xMin, Y1: yMin, X2: xMax, Y2: yMax}
}

// Width returns the box width
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the box height
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns the box area
func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

// Center converts the box to center form. The conversion is lossless for
// non-degenerate boxes and round-trips with Corners
func (b Box) Center() CenterBox {
	return CenterBox{
		CX: (b.X1 + b.X2) / 2,
		CY: (b.Y1 + b.Y2) / 2,
		W:  b.X2 - b.X1,
		H:  b.Y2 - b.Y1,
	}
}

// Corners converts the box to corner form
func (cb CenterBox) Corners() Box {
	return Box{
		X1: cb.CX - cb.W/2,
		Y1: cb.CY - cb.H/2,
		X2: cb.CX + cb.W/2,
		Y2: cb.CY + cb.H/2,
	}
}

// Intersection returns the area of overlap between two boxes in the same
// coordinate space
func Intersection(a, b Box) float32 {

	w := math32.Max(0, math32.Min(a.X2, b.X2)-math32.Max(a.X1, b.X1))
	h := math32.Max(0, math32.Min(a.Y2, b.Y2)-math32.Max(a.Y1, b.Y1))

	return w * h
}

// IoU returns the Intersection over Union of two boxes in the same
// coordinate space. Zero area boxes and zero unions return 0 rather than
// dividing by zero. IoU is symmetric in its arguments.
func IoU(a, b Box) float32 {

	intersection := Intersection(a, b)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}
