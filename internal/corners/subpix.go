package corners

import (
	"image"
	"math"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

// Subpixel refinement configuration. The window is (2*subPixWindow+1)
// pixels on a side; iteration stops when a step moves the estimate less
// than subPixEpsilon or after subPixMaxIter rounds.
const (
	subPixWindow  = 10
	subPixMaxIter = 40
	subPixEpsilon = 0.001
)

// refineSubPix nudges each corner to subpixel precision in place.
//
// For every point the 21x21 window around the current estimate is sampled
// with bilinear interpolation and central-difference gradients are
// accumulated into the Gaussian-weighted normal equations
//
//	| a b | |u|   |bb1|
//	| b c | |v| = |bb2|
//
// whose solution (u, v) is the offset from the window center to the
// gradient-weighted corner position. The estimate moves there and the
// window re-centers, repeating until the step falls below the epsilon or
// the iteration cap is reached.
//
// Refinement never fails: a near-singular system keeps the last computed
// position, and a point that drifts more than the window size from where
// it started falls back to its original location. Slice order and length
// are preserved so scores stay paired with their corners.
func refineSubPix(img *image.Gray, pts []imaging.Point2f) {
	if len(pts) == 0 {
		return
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Separable Gaussian weight profile over the window offsets.
	var profile [2*subPixWindow + 1]float64
	coeff := 1.0 / (subPixWindow * subPixWindow)
	for i := -subPixWindow; i <= subPixWindow; i++ {
		profile[i+subPixWindow] = math.Exp(-float64(i*i) * coeff)
	}

	epsSq := subPixEpsilon * subPixEpsilon

	for k := range pts {
		startX := float64(pts[k].X)
		startY := float64(pts[k].Y)
		curX, curY := startX, startY

		for iter := 0; iter < subPixMaxIter; iter++ {
			var a, b, c, bb1, bb2 float64

			for j := -subPixWindow; j <= subPixWindow; j++ {
				wy := profile[j+subPixWindow]
				py := curY + float64(j)
				for i := -subPixWindow; i <= subPixWindow; i++ {
					w := wy * profile[i+subPixWindow]
					px := curX + float64(i)

					gx := sampleBilinear(img, px+1, py, width, height) -
						sampleBilinear(img, px-1, py, width, height)
					gy := sampleBilinear(img, px, py+1, width, height) -
						sampleBilinear(img, px, py-1, width, height)

					gxx := gx * gx * w
					gxy := gx * gy * w
					gyy := gy * gy * w

					a += gxx
					b += gxy
					c += gyy
					bb1 += gxx*float64(i) + gxy*float64(j)
					bb2 += gxy*float64(i) + gyy*float64(j)
				}
			}

			det := a*c - b*b
			if math.Abs(det) < 1e-12 {
				// Degenerate local gradient; keep the last position.
				break
			}

			u := (c*bb1 - b*bb2) / det
			v := (a*bb2 - b*bb1) / det
			curX += u
			curY += v

			if u*u+v*v <= epsSq {
				break
			}
		}

		// Poor convergence check: a corner that wandered out of its own
		// window is unreliable, revert to the integer-pixel position.
		if math.Abs(curX-startX) > subPixWindow || math.Abs(curY-startY) > subPixWindow {
			curX, curY = startX, startY
		}

		pts[k] = imaging.ClampToBounds(imaging.Pt2f(float32(curX), float32(curY)), width, height)
	}
}

// sampleBilinear reads the image intensity at a continuous coordinate using
// bilinear interpolation with replicated borders.
func sampleBilinear(img *image.Gray, x, y float64, width, height int) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	xa := clamp(x0, 0, width-1)
	xb := clamp(x0+1, 0, width-1)
	ya := clamp(y0, 0, height-1)
	yb := clamp(y0+1, 0, height-1)

	v00 := float64(img.Pix[ya*img.Stride+xa])
	v01 := float64(img.Pix[ya*img.Stride+xb])
	v10 := float64(img.Pix[yb*img.Stride+xa])
	v11 := float64(img.Pix[yb*img.Stride+xb])

	top := v00 + (v01-v00)*fx
	bot := v10 + (v11-v10)*fx
	return top + (bot-top)*fy
}
