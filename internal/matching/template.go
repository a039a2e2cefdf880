// Package matching provides brute-force template matching over grayscale
// images.
//
// The matcher slides a template over a search stripe and scores every
// placement with a normalized sum of squared differences. It trades speed
// for simplicity and exactness: there is no pyramid, no FFT, and no early
// termination, so results are fully deterministic. Intended for narrow
// search stripes such as epipolar bands in a stereo matcher.
package matching

import (
	"fmt"
	"image"
	"math"
)

// MatchResult is the dense score map produced by MatchTemplate.
//
// Scores has one row per vertical placement and one column per horizontal
// placement: Scores[i][j] rates the template anchored with its top-left
// corner at stripe pixel (j, i). Lower is better; 0 means an exact pixel
// match.
type MatchResult struct {
	// Rows is the number of vertical template placements.
	Rows int `json:"rows"`

	// Cols is the number of horizontal template placements.
	Cols int `json:"cols"`

	// Scores holds the normalized SSD score of every placement.
	Scores [][]float64 `json:"scores"`
}

// MatchTemplate scores every placement of a template inside a search
// stripe using normalized sum of squared differences.
//
// Parameters:
//   - stripe: The grayscale region to search. Must be at least as large as
//     the template in both dimensions.
//   - templ: The grayscale template. Must be non-empty.
//
// Returns:
//   - *MatchResult: A (stripeH-templH+1) x (stripeW-templW+1) score map.
//   - error: Non-nil if either image is empty or the template does not fit
//     inside the stripe.
//
// Each placement is scored as
//
//	SSD / sqrt(sum(T^2) * sum(S^2))
//
// where SSD is the sum of squared pixel differences over the overlap, T is
// the template and S the covered stripe window. The normalization makes
// scores comparable across placements with different local brightness. An
// all-black overlap scores 0/0; it is reported as 0 (perfect match of
// nothing) rather than NaN.
func MatchTemplate(stripe, templ *image.Gray) (*MatchResult, error) {
	sb := stripe.Bounds()
	tb := templ.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	tw, th := tb.Dx(), tb.Dy()

	if sw == 0 || sh == 0 {
		return nil, fmt.Errorf("matching: stripe is empty")
	}
	if tw == 0 || th == 0 {
		return nil, fmt.Errorf("matching: template is empty")
	}
	if tw > sw || th > sh {
		return nil, fmt.Errorf("matching: template %dx%d does not fit in stripe %dx%d", tw, th, sw, sh)
	}

	rows := sh - th + 1
	cols := sw - tw + 1

	// Template energy is placement-independent; compute it once.
	var templSq float64
	for j := 0; j < th; j++ {
		for i := 0; i < tw; i++ {
			v := float64(templ.Pix[j*templ.Stride+i])
			templSq += v * v
		}
	}

	scores := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		scores[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			var diffSq, stripeSq float64
			for j := 0; j < th; j++ {
				srow := stripe.Pix[(r+j)*stripe.Stride+c:]
				trow := templ.Pix[j*templ.Stride:]
				for i := 0; i < tw; i++ {
					s := float64(srow[i])
					t := float64(trow[i])
					d := t - s
					diffSq += d * d
					stripeSq += s * s
				}
			}
			norm := math.Sqrt(templSq * stripeSq)
			if norm == 0 {
				scores[r][c] = 0
			} else {
				scores[r][c] = diffSq / norm
			}
		}
	}

	return &MatchResult{Rows: rows, Cols: cols, Scores: scores}, nil
}

// Best returns the placement with the lowest score and its value. Ties go
// to the first placement in row-major order.
func (m *MatchResult) Best() (x, y int, score float64) {
	best := math.Inf(1)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.Scores[r][c] < best {
				best = m.Scores[r][c]
				x, y = c, r
			}
		}
	}
	return x, y, best
}
