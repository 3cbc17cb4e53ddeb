package region

import "math"

// BBox is a rectangle in page coordinates with Y increasing downward,
// matching the extraction collaborator's convention: Y0 is the top edge.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Normalize returns the box with sorted corners, and false for
// degenerate (zero-width or zero-height) boxes.
func (b BBox) Normalize() (BBox, bool) {
	x0, x1 := math.Min(b.X0, b.X1), math.Max(b.X0, b.X1)
	y0, y1 := math.Min(b.Y0, b.Y1), math.Max(b.Y0, b.Y1)
	if x0 == x1 || y0 == y1 {
		return BBox{}, false
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, true
}

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 { return b.Y0 }

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 { return b.Y1 }

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }
