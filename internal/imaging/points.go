package imaging

import (
	"image"
	"math"
)

// Point2f represents a 2D position with subpixel precision.
//
// The coordinate system matches the rest of this package: (0,0) is the
// top-left pixel center, X increases rightward, Y increases downward.
// float32 matches the precision actually carried by detected keypoints;
// scores and other per-point metadata are stored separately.
type Point2f struct {
	X float32 `json:"x"` // Horizontal position in pixels
	Y float32 `json:"y"` // Vertical position in pixels
}

// Pt2f is a shorthand constructor for Point2f.
func Pt2f(x, y float32) Point2f {
	return Point2f{X: x, Y: y}
}

// ClampToBounds constrains a point so it cannot fall outside the pixel grid
// of an image with the given dimensions.
//
// Coordinates are clamped to [0, width-1] and [0, height-1]. Useful after
// subpixel refinement or coordinate arithmetic that may push a point past
// the image border.
func ClampToBounds(p Point2f, width, height int) Point2f {
	out := p
	out.X = float32(math.Min(float64(out.X), float64(width-1)))
	out.X = float32(math.Max(float64(out.X), 0))
	out.Y = float32(math.Min(float64(out.Y), float64(height-1)))
	out.Y = float32(math.Max(float64(out.Y), 0))
	return out
}

// RoundAndClamp rounds a point to the nearest integer pixel and then clamps
// it to the image bounds.
func RoundAndClamp(p Point2f, width, height int) Point2f {
	rounded := Point2f{
		X: float32(math.Round(float64(p.X))),
		Y: float32(math.Round(float64(p.Y))),
	}
	return ClampToBounds(rounded, width, height)
}

// Dist returns the Euclidean distance between two points in pixels.
func Dist(a, b Point2f) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ApproxEqual reports whether two points coincide within tol on both axes.
func ApproxEqual(a, b Point2f, tol float64) bool {
	return math.Abs(float64(a.X-b.X)) <= tol && math.Abs(float64(a.Y-b.Y)) <= tol
}

// GrayMaxAbsDiff returns the largest absolute per-pixel difference between
// two grayscale images.
//
// Two empty images compare as identical (0). Images with different
// dimensions are reported as maximally different (256, above any possible
// 8-bit pixel delta) so the caller can distinguish the case from a genuine
// pixel mismatch.
func GrayMaxAbsDiff(a, b *image.Gray) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		return 256
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 256
	}
	maxDiff := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			d := int(a.GrayAt(ab.Min.X+x, ab.Min.Y+y).Y) - int(b.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y)
			if d < 0 {
				d = -d
			}
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff
}
