package corners

import (
	"image"
	"math"
)

// responseMap computes the dense per-pixel cornerness response of a
// grayscale image, returned as a row-major buffer of width*height values.
//
// For every pixel the 2x2 gradient structure tensor is accumulated over a
// blockSize x blockSize window of Sobel gradients:
//
//	| Sxx Sxy |       Sxx = sum(dx*dx), Sxy = sum(dx*dy), Syy = sum(dy*dy)
//	| Sxy Syy |
//
// In Harris mode the response is det - k*trace^2:
//
//	Sxx*Syy - Sxy*Sxy - k*(Sxx+Syy)^2
//
// otherwise it is the smaller eigenvalue of the tensor:
//
//	(a+c) - sqrt((a-c)^2 + b^2)   with a = Sxx/2, b = Sxy, c = Syy/2
//
// Gradients are normalized by 1/(4*blockSize*255) so responses stay in a
// comparable range across block sizes and the 8-bit intensity scale.
// Borders use replicated edge values; the extractor never promotes edge
// rows or columns to candidates regardless of their response.
func responseMap(img *image.Gray, blockSize int, useHarris bool, harrisK float64) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scale := 1.0 / (4.0 * float64(blockSize) * 255.0)

	// Sobel gradients with replicated borders.
	dx := make([]float64, width*height)
	dy := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			xm := clamp(x-1, 0, width-1)
			xp := clamp(x+1, 0, width-1)
			ym := clamp(y-1, 0, height-1)
			yp := clamp(y+1, 0, height-1)

			tl := float64(img.Pix[ym*img.Stride+xm])
			tc := float64(img.Pix[ym*img.Stride+x])
			tr := float64(img.Pix[ym*img.Stride+xp])
			ml := float64(img.Pix[y*img.Stride+xm])
			mr := float64(img.Pix[y*img.Stride+xp])
			bl := float64(img.Pix[yp*img.Stride+xm])
			bc := float64(img.Pix[yp*img.Stride+x])
			br := float64(img.Pix[yp*img.Stride+xp])

			idx := y*width + x
			dx[idx] = (tr + 2*mr + br - tl - 2*ml - bl) * scale
			dy[idx] = (bl + 2*bc + br - tl - 2*tc - tr) * scale
		}
	}

	// Structure tensor sums over the block window, then the scalar score.
	resp := make([]float64, width*height)
	half := blockSize / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sxx, sxy, syy float64
			for wy := -half; wy <= half; wy++ {
				py := clamp(y+wy, 0, height-1)
				for wx := -half; wx <= half; wx++ {
					px := clamp(x+wx, 0, width-1)
					gx := dx[py*width+px]
					gy := dy[py*width+px]
					sxx += gx * gx
					sxy += gx * gy
					syy += gy * gy
				}
			}

			if useHarris {
				trace := sxx + syy
				resp[y*width+x] = sxx*syy - sxy*sxy - harrisK*trace*trace
			} else {
				a := sxx * 0.5
				c := syy * 0.5
				resp[y*width+x] = (a + c) - math.Sqrt((a-c)*(a-c)+sxy*sxy)
			}
		}
	}
	return resp
}

// dilate3x3 returns a copy of a row-major response buffer where each value
// is replaced by the maximum of its 3x3 neighborhood (clamped at borders).
// Comparing a pixel against its dilated value is the local-maximum test
// used by candidate extraction.
func dilate3x3(src []float64, width, height int) []float64 {
	dst := make([]float64, len(src))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			maxVal := src[y*width+x]
			for wy := -1; wy <= 1; wy++ {
				py := clamp(y+wy, 0, height-1)
				for wx := -1; wx <= 1; wx++ {
					px := clamp(x+wx, 0, width-1)
					if v := src[py*width+px]; v > maxVal {
						maxVal = v
					}
				}
			}
			dst[y*width+x] = maxVal
		}
	}
	return dst
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
