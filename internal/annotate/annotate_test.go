package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

var green = color.RGBA{0, 255, 0, 255}

// countColor returns how many canvas pixels exactly match col.
func countColor(canvas *image.RGBA, col color.RGBA) int {
	n := 0
	b := canvas.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if canvas.RGBAAt(x, y) == col {
				n++
			}
		}
	}
	return n
}

func TestDrawCorners(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 30))
	corners := []imaging.Point2f{imaging.Pt2f(20, 15)}

	canvas := DrawCorners(src, corners, nil, DefaultStyle())

	if canvas.Bounds().Dx() != 40 || canvas.Bounds().Dy() != 30 {
		t.Fatalf("canvas bounds = %v, want 40x30", canvas.Bounds())
	}
	if countColor(canvas, green) == 0 {
		t.Error("no marker pixels drawn")
	}
	// Center of the circle outline stays untouched.
	if canvas.RGBAAt(20, 15) == green {
		t.Error("circle outline filled its center")
	}

	// Source must not be modified.
	for i, v := range src.Pix {
		if v != 0 {
			t.Fatalf("source pixel %d modified to %d", i, v)
		}
	}
}

func TestDrawCorners_OutsidePointsSkipped(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	corners := []imaging.Point2f{imaging.Pt2f(-50, -50), imaging.Pt2f(200, 200)}

	// Must not panic; markers land entirely off-canvas.
	canvas := DrawCorners(src, corners, nil, DefaultStyle())
	if countColor(canvas, green) != 0 {
		t.Error("off-canvas markers left pixels behind")
	}
}

func TestDrawCorners_ScoreRamp(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 60, 20))
	corners := []imaging.Point2f{imaging.Pt2f(15, 10), imaging.Pt2f(45, 10)}
	scores := []float64{100, 10}

	// Zero style color selects score-ramp coloring: the strongest marker is
	// red, so pure green must not appear.
	canvas := DrawCorners(src, corners, scores, Style{Radius: 2})
	if countColor(canvas, color.RGBA{255, 0, 0, 255}) == 0 {
		t.Error("strongest corner not drawn in red")
	}
	if countColor(canvas, green) != 0 {
		t.Error("score-ramp coloring produced fixed green markers")
	}
}

func TestDrawCorners_ScoreLabels(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 80, 40))
	corners := []imaging.Point2f{imaging.Pt2f(40, 20)}
	scores := []float64{42}

	style := DefaultStyle()
	plain := countColor(DrawCorners(src, corners, scores, style), green)

	style.ShowScores = true
	labeled := countColor(DrawCorners(src, corners, scores, style), green)

	if labeled <= plain {
		t.Errorf("labels added no pixels: %d vs %d", labeled, plain)
	}
}

func TestDrawCrosses(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 20, 20))
	canvas := DrawCrosses(src, []imaging.Point2f{imaging.Pt2f(10, 10)}, nil, DefaultStyle())

	// Both diagonals pass through the center.
	if canvas.RGBAAt(10, 10) != green {
		t.Error("cross center not drawn")
	}
	if canvas.RGBAAt(7, 7) != green || canvas.RGBAAt(13, 7) != green {
		t.Error("cross arms not drawn")
	}
}

func TestSideBySide(t *testing.T) {
	left := image.NewGray(image.Rect(0, 0, 10, 8))
	right := image.NewGray(image.Rect(0, 0, 6, 12))
	for i := range right.Pix {
		right.Pix[i] = 255
	}

	canvas := SideBySide(left, right)
	if canvas.Bounds().Dx() != 16 || canvas.Bounds().Dy() != 12 {
		t.Fatalf("canvas = %v, want 16x12", canvas.Bounds())
	}
	if canvas.RGBAAt(12, 5) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("right image not copied at offset")
	}
	// Area below the shorter left image stays black padding.
	if canvas.RGBAAt(5, 10) != (color.RGBA{0, 0, 0, 0}) {
		t.Error("padding under left image was written")
	}
}

func TestDrawMatches(t *testing.T) {
	left := image.NewGray(image.Rect(0, 0, 20, 20))
	right := image.NewGray(image.Rect(0, 0, 20, 20))
	leftPts := []imaging.Point2f{imaging.Pt2f(5, 5)}
	rightPts := []imaging.Point2f{imaging.Pt2f(5, 5)}

	canvas, err := DrawMatches(left, leftPts, right, rightPts, []Match{{Left: 0, Right: 0}})
	if err != nil {
		t.Fatalf("DrawMatches failed: %v", err)
	}
	if canvas.Bounds().Dx() != 40 {
		t.Fatalf("canvas width = %d, want 40", canvas.Bounds().Dx())
	}
	// The match line crosses the seam between the two halves.
	mid := canvas.RGBAAt(20, 5)
	if mid == (color.RGBA{0, 0, 0, 255}) || mid == (color.RGBA{}) {
		t.Error("no match line drawn across the seam")
	}
}

func TestDrawMatches_BadIndex(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	pts := []imaging.Point2f{imaging.Pt2f(5, 5)}

	tests := []struct {
		name  string
		match Match
	}{
		{"left out of range", Match{Left: 1, Right: 0}},
		{"right out of range", Match{Left: 0, Right: 7}},
		{"negative left", Match{Left: -1, Right: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DrawMatches(img, pts, img, pts, []Match{tt.match}); err == nil {
				t.Error("expected index error, got nil")
			}
		})
	}
}
