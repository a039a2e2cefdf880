package corners

import (
	"math"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

// suppress greedily accepts candidates in descending-score order while
// enforcing a minimum pairwise distance, returning accepted positions and
// their paired scores in acceptance order.
//
// The image is partitioned into square cells of side round(minDistance)
// (minimum 1). Each accepted corner is stored in its cell, and a candidate
// only has to be checked against corners in the 3x3 block of cells around
// its own, since every previously accepted corner closer than minDistance
// must lie in that block. The check short-circuits on the first conflict.
//
// When minDistance < 1 suppression is skipped entirely: candidates are
// accepted in score order up to maxCorners with no spatial filtering, so
// adjacent duplicates are possible. Callers opt into that by passing a
// sub-pixel distance threshold.
//
// The grid is a transient arena owned by this call; nothing is shared
// between invocations.
func suppress(cands []candidate, width, height int, minDistance float64, maxCorners int) ([]imaging.Point2f, []float64) {
	pts := make([]imaging.Point2f, 0, len(cands))
	scores := make([]float64, 0, len(cands))

	if minDistance < 1 {
		for _, cand := range cands {
			pts = append(pts, imaging.Pt2f(float32(cand.col), float32(cand.row)))
			scores = append(scores, cand.score)
			if maxCorners > 0 && len(pts) == maxCorners {
				break
			}
		}
		return pts, scores
	}

	cellSize := int(math.Round(minDistance))
	if cellSize < 1 {
		cellSize = 1
	}
	gridWidth := (width + cellSize - 1) / cellSize
	gridHeight := (height + cellSize - 1) / cellSize
	grid := make([][]imaging.Point2f, gridWidth*gridHeight)

	minDistSq := minDistance * minDistance

	for _, cand := range cands {
		x := cand.col
		y := cand.row

		xCell := x / cellSize
		yCell := y / cellSize

		x1 := clamp(xCell-1, 0, gridWidth-1)
		y1 := clamp(yCell-1, 0, gridHeight-1)
		x2 := clamp(xCell+1, 0, gridWidth-1)
		y2 := clamp(yCell+1, 0, gridHeight-1)

		good := true
	neighborScan:
		for yy := y1; yy <= y2; yy++ {
			for xx := x1; xx <= x2; xx++ {
				for _, p := range grid[yy*gridWidth+xx] {
					dx := float64(x) - float64(p.X)
					dy := float64(y) - float64(p.Y)
					if dx*dx+dy*dy < minDistSq {
						good = false
						break neighborScan
					}
				}
			}
		}

		if good {
			pt := imaging.Pt2f(float32(x), float32(y))
			grid[yCell*gridWidth+xCell] = append(grid[yCell*gridWidth+xCell], pt)
			pts = append(pts, pt)
			scores = append(scores, cand.score)
			if maxCorners > 0 && len(pts) == maxCorners {
				break
			}
		}
	}
	return pts, scores
}
