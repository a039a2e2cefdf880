package corners

import (
	"image"
	"math"
	"testing"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

// makeUniformGray creates a constant-intensity grayscale image.
func makeUniformGray(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// makeTwoSquaresGray creates a dark image with two bright 3x3 squares
// centered at (20,20) and (70,20), 50px apart.
func makeTwoSquaresGray() *image.Gray {
	img := makeUniformGray(100, 60, 10)
	drawSquare(img, 20, 20)
	drawSquare(img, 70, 20)
	return img
}

// drawSquare paints a bright 3x3 square centered at (cx, cy).
func drawSquare(img *image.Gray, cx, cy int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			img.Pix[(cy+dy)*img.Stride+(cx+dx)] = 250
		}
	}
}

func TestDetect_TwoSeparatedCorners(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   10,
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
		HarrisK:      0.04,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Count != 2 {
		t.Fatalf("corner count: got %d, want 2 (corners: %v)", result.Count, result.Corners)
	}

	centers := []imaging.Point2f{imaging.Pt2f(20, 20), imaging.Pt2f(70, 20)}
	for _, center := range centers {
		found := false
		for _, pt := range result.Corners {
			if imaging.Dist(pt, center) <= 1.0 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no corner within 1px of square center %v (corners: %v)", center, result.Corners)
		}
	}

	for i, s := range result.Scores {
		if s <= 0 {
			t.Errorf("score[%d] = %g, want positive", i, s)
		}
	}
	// Identical squares should produce comparable strengths.
	if result.Scores[1] > 0 {
		ratio := result.Scores[0] / result.Scores[1]
		if ratio > 2 {
			t.Errorf("score ratio %g, want comparable scores (ratio <= 2)", ratio)
		}
	}
}

func TestDetect_MinDistanceExceedsSeparation(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   10,
		QualityLevel: 0.01,
		MinDistance:  100,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("corner count: got %d, want 1 (suppression radius exceeds separation)", result.Count)
	}
	// The surviving corner is the strongest one; with identical squares the
	// tie breaks to row-major scan order, which reaches (20,20) first.
	if imaging.Dist(result.Corners[0], imaging.Pt2f(20, 20)) > 1.0 {
		t.Errorf("surviving corner %v, want near (20,20)", result.Corners[0])
	}
}

func TestDetect_MaxCornersOne(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   1,
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("corner count: got %d, want 1", result.Count)
	}
	if imaging.Dist(result.Corners[0], imaging.Pt2f(20, 20)) > 1.0 {
		t.Errorf("corner %v, want the first-in-scan-order square center (20,20)", result.Corners[0])
	}
}

func TestDetect_UniformImage(t *testing.T) {
	for _, size := range []int{3, 16, 100} {
		img := makeUniformGray(size, size, 128)

		result, err := Detect(img, DefaultOptions())
		if err != nil {
			t.Fatalf("Detect on %dx%d uniform image failed: %v", size, size, err)
		}
		if len(result.Corners) != 0 || len(result.Scores) != 0 {
			t.Errorf("%dx%d uniform image: got %d corners, %d scores, want empty",
				size, size, len(result.Corners), len(result.Scores))
		}
	}
}

func TestDetect_PairingAndQualityInvariants(t *testing.T) {
	img := makeTwoSquaresGray()
	opts := Options{
		MaxCorners:   0, // unbounded
		QualityLevel: 0.05,
		MinDistance:  3,
		BlockSize:    3,
	}

	result, err := Detect(img, opts)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Corners) != len(result.Scores) {
		t.Fatalf("pairing: %d corners but %d scores", len(result.Corners), len(result.Scores))
	}
	if result.Count != len(result.Corners) {
		t.Errorf("Count %d does not match corner slice length %d", result.Count, len(result.Corners))
	}

	// Scores are sorted descending, so scores[0] is the maximum response;
	// every accepted score must clear the relative quality cutoff.
	for i := 1; i < len(result.Scores); i++ {
		if result.Scores[i] > result.Scores[i-1] {
			t.Errorf("scores not descending at %d: %g > %g", i, result.Scores[i], result.Scores[i-1])
		}
		if result.Scores[i] < opts.QualityLevel*result.Scores[0] {
			t.Errorf("score[%d] = %g below quality cutoff %g",
				i, result.Scores[i], opts.QualityLevel*result.Scores[0])
		}
	}
}

func TestDetect_DistanceInvariant(t *testing.T) {
	// A grid of bright squares gives plenty of candidates.
	img := makeUniformGray(120, 120, 10)
	for cy := 10; cy < 120; cy += 15 {
		for cx := 10; cx < 120; cx += 15 {
			drawSquare(img, cx, cy)
		}
	}

	minDist := 8.0
	result, err := Detect(img, Options{
		QualityLevel: 0.01,
		MinDistance:  minDist,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Count < 10 {
		t.Fatalf("expected a dense corner set, got %d", result.Count)
	}

	// Allow 2px of slack for the subpixel refiner's bounded perturbation.
	for i := 0; i < len(result.Corners); i++ {
		for j := i + 1; j < len(result.Corners); j++ {
			if d := imaging.Dist(result.Corners[i], result.Corners[j]); d < minDist-2 {
				t.Errorf("corners %d and %d only %gpx apart, want >= %g", i, j, d, minDist)
			}
		}
	}
}

func TestDetect_Deterministic(t *testing.T) {
	img := makeTwoSquaresGray()
	opts := DefaultOptions()

	first, err := Detect(img, opts)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := Detect(img, opts)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(first.Corners) != len(second.Corners) {
		t.Fatalf("run-to-run corner counts differ: %d vs %d", len(first.Corners), len(second.Corners))
	}
	for i := range first.Corners {
		if first.Corners[i] != second.Corners[i] || first.Scores[i] != second.Scores[i] {
			t.Errorf("run-to-run mismatch at %d: (%v, %g) vs (%v, %g)",
				i, first.Corners[i], first.Scores[i], second.Corners[i], second.Scores[i])
		}
	}
}

func TestDetect_MaskRestrictsDetection(t *testing.T) {
	img := makeTwoSquaresGray()

	// Mask out the left half, leaving only the square at (70,20) eligible.
	mask := image.NewGray(image.Rect(0, 0, 100, 60))
	for y := 0; y < 60; y++ {
		for x := 50; x < 100; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}

	result, err := Detect(img, Options{
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
		Mask:         mask,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("corner count with half mask: got %d, want 1", result.Count)
	}
	if imaging.Dist(result.Corners[0], imaging.Pt2f(70, 20)) > 1.0 {
		t.Errorf("corner %v, want near the unmasked square (70,20)", result.Corners[0])
	}
}

func TestDetect_FullyMaskedImage(t *testing.T) {
	img := makeTwoSquaresGray()
	mask := image.NewGray(image.Rect(0, 0, 100, 60)) // all zero

	result, err := Detect(img, Options{
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
		Mask:         mask,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Corners) != 0 || len(result.Scores) != 0 {
		t.Errorf("fully masked image: got %d corners, want 0", len(result.Corners))
	}
}

func TestDetect_SubOneMinDistanceSkipsSuppression(t *testing.T) {
	img := makeTwoSquaresGray()

	unsuppressed, err := Detect(img, Options{
		QualityLevel: 0.01,
		MinDistance:  0.5,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	suppressed, err := Detect(img, Options{
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// Without spatial filtering every local maximum survives, so the
	// result can only grow relative to the suppressed run.
	if len(unsuppressed.Corners) < len(suppressed.Corners) {
		t.Errorf("suppression-skipped run returned fewer corners (%d) than suppressed run (%d)",
			len(unsuppressed.Corners), len(suppressed.Corners))
	}
	if len(unsuppressed.Corners) != len(unsuppressed.Scores) {
		t.Errorf("pairing broken: %d corners, %d scores",
			len(unsuppressed.Corners), len(unsuppressed.Scores))
	}
}

func TestDetect_HarrisMode(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   10,
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
		UseHarris:    true,
		HarrisK:      0.04,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Harris corner count: got %d, want 2", result.Count)
	}
	for _, center := range []imaging.Point2f{imaging.Pt2f(20, 20), imaging.Pt2f(70, 20)} {
		found := false
		for _, pt := range result.Corners {
			if imaging.Dist(pt, center) <= 1.0 {
				found = true
			}
		}
		if !found {
			t.Errorf("Harris mode: no corner near %v", center)
		}
	}
}

func TestDetect_SmoothSigma(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   10,
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
		SmoothSigma:  1.0,
	})
	if err != nil {
		t.Fatalf("Detect with smoothing failed: %v", err)
	}
	// Smoothing spreads the blobs but the two maxima must survive.
	if result.Count < 2 {
		t.Errorf("corner count with smoothing: got %d, want >= 2", result.Count)
	}
}

func TestDetect_InvalidParameters(t *testing.T) {
	img := makeTwoSquaresGray()
	wrongMask := image.NewGray(image.Rect(0, 0, 10, 10))

	tests := []struct {
		name string
		img  *image.Gray
		opts Options
	}{
		{"nil image", nil, DefaultOptions()},
		{"empty image", image.NewGray(image.Rect(0, 0, 0, 0)), DefaultOptions()},
		{"even block size", img, Options{QualityLevel: 0.01, BlockSize: 4}},
		{"zero block size", img, Options{QualityLevel: 0.01, BlockSize: 0}},
		{"zero quality", img, Options{QualityLevel: 0, BlockSize: 3}},
		{"quality above one", img, Options{QualityLevel: 1.5, BlockSize: 3}},
		{"negative min distance", img, Options{QualityLevel: 0.01, BlockSize: 3, MinDistance: -1}},
		{"negative smooth sigma", img, Options{QualityLevel: 0.01, BlockSize: 3, SmoothSigma: -2}},
		{"mask size mismatch", img, Options{QualityLevel: 0.01, BlockSize: 3, Mask: wrongMask}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Detect(tt.img, tt.opts); err == nil {
				t.Error("expected parameter error, got nil")
			}
		})
	}
}

func TestExtractCorners(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := ExtractCorners(img)
	if err != nil {
		t.Fatalf("ExtractCorners failed: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("corner count: got %d, want 2", result.Count)
	}
	if result.Count > 100 {
		t.Errorf("default cap of 100 exceeded: %d", result.Count)
	}
}

func TestDetect_CapInvariant(t *testing.T) {
	img := makeUniformGray(120, 120, 10)
	for cy := 10; cy < 120; cy += 15 {
		for cx := 10; cx < 120; cx += 15 {
			drawSquare(img, cx, cy)
		}
	}

	for _, limit := range []int{1, 3, 7, 20} {
		result, err := Detect(img, Options{
			MaxCorners:   limit,
			QualityLevel: 0.01,
			MinDistance:  3,
			BlockSize:    3,
		})
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if result.Count > limit {
			t.Errorf("cap %d exceeded: got %d corners", limit, result.Count)
		}
	}
}

func TestDetect_RefinementStaysNearPeak(t *testing.T) {
	img := makeTwoSquaresGray()

	result, err := Detect(img, Options{
		MaxCorners:   10,
		QualityLevel: 0.01,
		MinDistance:  5,
		BlockSize:    3,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	for _, pt := range result.Corners {
		if math.IsNaN(float64(pt.X)) || math.IsNaN(float64(pt.Y)) {
			t.Fatalf("refined corner has NaN coordinate: %v", pt)
		}
		if pt.X < 0 || pt.Y < 0 || pt.X > 99 || pt.Y > 59 {
			t.Errorf("refined corner %v outside image bounds", pt)
		}
	}
}
