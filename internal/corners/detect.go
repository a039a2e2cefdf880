package corners

import (
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blur"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

// Options controls corner detection.
type Options struct {
	// MaxCorners caps the number of returned corners. Zero or negative
	// means unbounded.
	MaxCorners int `json:"max_corners"`

	// QualityLevel is the relative response threshold in (0, 1]. Candidates
	// scoring below QualityLevel times the strongest response are discarded.
	QualityLevel float64 `json:"quality_level"`

	// MinDistance is the minimum allowed Euclidean distance in pixels
	// between two accepted corners. Values below 1 disable spatial
	// suppression entirely; only the MaxCorners cap applies.
	MinDistance float64 `json:"min_distance"`

	// Mask restricts detection to pixels where the mask is nonzero.
	// Optional; nil means every pixel is eligible. Must match the image
	// dimensions when set.
	Mask *image.Gray `json:"-"`

	// BlockSize is the odd side length of the window used to accumulate
	// the gradient structure tensor. Typical: 3.
	BlockSize int `json:"block_size"`

	// UseHarris selects the Harris response instead of the
	// minimum-eigenvalue (Shi-Tomasi) response.
	UseHarris bool `json:"use_harris"`

	// HarrisK is the Harris trace weighting constant. Ignored unless
	// UseHarris is set. Typical: 0.04.
	HarrisK float64 `json:"harris_k"`

	// SmoothSigma, when positive, applies a Gaussian blur with the given
	// radius before computing responses. Helps on noisy frames; leave zero
	// to detect on the raw image.
	SmoothSigma float64 `json:"smooth_sigma"`
}

// DefaultOptions returns the detector configuration used by the tracking
// front-end: min-eigenvalue mode, top 100 corners, quality 0.01, minimum
// spacing of 10 pixels, 3x3 tensor window.
func DefaultOptions() Options {
	return Options{
		MaxCorners:   100,
		QualityLevel: 0.01,
		MinDistance:  10,
		BlockSize:    3,
		UseHarris:    false,
		HarrisK:      0.04,
	}
}

// Result holds detected corners and their strength scores.
//
// Corners and Scores are positionally paired: Scores[i] is the cornerness
// response of Corners[i] at the moment it was extracted, before subpixel
// refinement moved the coordinates. Both slices are ordered by descending
// score and always have equal length.
type Result struct {
	// Corners are the subpixel-refined corner locations.
	Corners []imaging.Point2f `json:"corners"`

	// Scores are the cornerness responses paired with Corners.
	Scores []float64 `json:"scores"`

	// Count is the number of detected corners.
	Count int `json:"count"`
}

// candidate is a local response maximum prior to spatial suppression.
// Candidates are immutable once created; row/col are integer pixel
// coordinates recorded at extraction time.
type candidate struct {
	row   int
	col   int
	score float64
}

// Detect finds corners in a grayscale image and returns their locations
// with per-corner strength scores.
//
// Parameters:
//   - img: Single-channel source image with bounds anchored at (0,0), as
//     produced by the imaging package. Must be non-empty.
//   - opts: Detection parameters; see Options. DefaultOptions provides the
//     standard tracking configuration.
//
// Returns:
//   - *Result: Corners sorted by descending score, paired with scores,
//     refined to subpixel precision. May be empty.
//   - error: Non-nil only for malformed parameters. Image content that
//     yields no corners (flat image, everything masked out, nothing above
//     the quality threshold) produces an empty result with a nil error.
//
// # Algorithm
//
//  1. Optional Gaussian pre-smoothing (Options.SmoothSigma)
//  2. Dense cornerness response (Harris or minimum-eigenvalue) over the
//     BlockSize structure-tensor window
//  3. Quality cutoff at QualityLevel times the maximum masked response,
//     then a 3x3 dilation; interior pixels equal to their dilated value
//     are candidates
//  4. Stable sort by descending score (ties keep row-major scan order)
//  5. Greedy grid-based suppression enforcing MinDistance, capped at
//     MaxCorners
//  6. Iterative subpixel refinement of the accepted locations
//
// Scores are frozen at extraction; refinement only moves coordinates.
func Detect(img *image.Gray, opts Options) (*Result, error) {
	if err := validate(img, opts); err != nil {
		return nil, err
	}

	src := img
	if opts.SmoothSigma > 0 {
		src = imaging.ToGray(blur.Gaussian(img, opts.SmoothSigma))
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	resp := responseMap(src, opts.BlockSize, opts.UseHarris, opts.HarrisK)

	cands := extractCandidates(resp, opts.Mask, width, height, opts.QualityLevel)
	if len(cands) == 0 {
		return &Result{Corners: []imaging.Point2f{}, Scores: []float64{}}, nil
	}

	// Stable sort so equal scores keep the row-major order of extraction.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	pts, scores := suppress(cands, width, height, opts.MinDistance, opts.MaxCorners)

	refineSubPix(src, pts)

	return &Result{
		Corners: pts,
		Scores:  scores,
		Count:   len(pts),
	}, nil
}

// ExtractCorners runs Detect with DefaultOptions. It is the convenience
// entry point for callers that just want the standard set of trackable
// corners from a frame.
func ExtractCorners(img *image.Gray) (*Result, error) {
	return Detect(img, DefaultOptions())
}

// validate fails fast on parameter contract violations so malformed calls
// cannot silently produce corrupt detections.
func validate(img *image.Gray, opts Options) error {
	if img == nil {
		return fmt.Errorf("corners: image is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return fmt.Errorf("corners: image is empty (%dx%d)", bounds.Dx(), bounds.Dy())
	}
	if opts.BlockSize < 1 || opts.BlockSize%2 == 0 {
		return fmt.Errorf("corners: block size must be a positive odd integer, got %d", opts.BlockSize)
	}
	if opts.QualityLevel <= 0 || opts.QualityLevel > 1 {
		return fmt.Errorf("corners: quality level must be in (0,1], got %g", opts.QualityLevel)
	}
	if opts.MinDistance < 0 {
		return fmt.Errorf("corners: min distance must be >= 0, got %g", opts.MinDistance)
	}
	if opts.SmoothSigma < 0 {
		return fmt.Errorf("corners: smooth sigma must be >= 0, got %g", opts.SmoothSigma)
	}
	if opts.Mask != nil {
		mb := opts.Mask.Bounds()
		if mb.Dx() != bounds.Dx() || mb.Dy() != bounds.Dy() {
			return fmt.Errorf("corners: mask size %dx%d does not match image %dx%d",
				mb.Dx(), mb.Dy(), bounds.Dx(), bounds.Dy())
		}
	}
	return nil
}

// extractCandidates applies the quality cutoff and 3x3 local-maximum test
// to a response buffer and returns the surviving pixels in row-major scan
// order.
//
// The cutoff is relative: responses below qualityLevel times the maximum
// response over eligible (unmasked) pixels are zeroed. A pixel becomes a
// candidate when its thresholded response is nonzero, equals the dilated
// response at the same location, and the mask (if any) is nonzero there.
// Image edge rows and columns are never candidates.
func extractCandidates(resp []float64, mask *image.Gray, width, height int, qualityLevel float64) []candidate {
	// Maximum response restricted to the mask.
	maxResp := 0.0
	first := true
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask != nil && mask.Pix[y*mask.Stride+x] == 0 {
				continue
			}
			if v := resp[y*width+x]; first || v > maxResp {
				maxResp = v
				first = false
			}
		}
	}
	if first || maxResp <= 0 {
		// Fully masked out, or no pixel has positive response.
		return nil
	}

	cutoff := maxResp * qualityLevel
	for i, v := range resp {
		if v < cutoff {
			resp[i] = 0
		}
	}

	dil := dilate3x3(resp, width, height)

	var cands []candidate
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			v := resp[y*width+x]
			if v == 0 || v != dil[y*width+x] {
				continue
			}
			if mask != nil && mask.Pix[y*mask.Stride+x] == 0 {
				continue
			}
			cands = append(cands, candidate{row: y, col: x, score: v})
		}
	}
	return cands
}
