package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache provides thread-safe caching of loaded images to avoid
// redundant disk reads.
//
// Decoded images are keyed by the exact path string passed to Load, so
// relative and absolute paths to the same file occupy separate entries.
// All methods are safe for concurrent use.
//
// Cached images stay in memory until Evict or Clear is called. Long-running
// processes handling many frames should clear the cache periodically.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not
// cached.
//
// Supported formats are PNG, JPEG, GIF, and WebP. The concrete return type
// depends on the source format (e.g. *image.NRGBA, *image.YCbCr).
// Returns an error if the file cannot be opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadGray loads an image and converts it to a single-channel grayscale
// buffer, optionally applying histogram equalization.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//   - equalize: When true, the grayscale histogram is equalized to spread
//     intensity values over the full 0-255 range. Improves corner response
//     on low-contrast frames at the cost of amplifying noise.
//
// Returns:
//   - *image.Gray: The grayscale image, suitable for corner detection and
//     template matching.
//   - error: Non-nil if the image cannot be loaded.
//
// Color images are reduced to luminance using the ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B). Images that are already grayscale are
// converted without loss.
func LoadGray(cache *ImageCache, path string, equalize bool) (*image.Gray, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	gray := ToGray(img)
	if equalize {
		gray = EqualizeGray(gray)
	}
	return gray, nil
}

// ToGray converts any image to an 8-bit single-channel grayscale buffer
// using ITU-R BT.601 luminance weights.
//
// The returned image always has bounds starting at (0, 0) regardless of the
// source bounds, which simplifies downstream pixel indexing.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.Pix[y*gray.Stride+x] = uint8(lum + 0.5)
		}
	}
	return gray
}

// EqualizeGray applies histogram equalization to a grayscale image and
// returns the result as a new image.
//
// Equalization remaps intensities through the normalized cumulative
// histogram so the output uses the full dynamic range. The input image is
// not modified. An empty or single-intensity image is returned unchanged.
func EqualizeGray(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	total := width * height
	if total == 0 {
		return src
	}

	var hist [256]int
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width]
		for _, v := range row {
			hist[v]++
		}
	}

	// Lookup table from the cumulative distribution, anchored at the first
	// occupied bin so the darkest present intensity maps to 0.
	var lut [256]uint8
	cdf := 0
	cdfMin := -1
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		if cdfMin < 0 && hist[i] > 0 {
			cdfMin = cdf
		}
		if cdfMin >= 0 && total > cdfMin {
			scaled := float64(cdf-cdfMin) * 255.0 / float64(total-cdfMin)
			lut[i] = uint8(scaled + 0.5)
		} else {
			lut[i] = uint8(i)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+width]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x, v := range srcRow {
			dstRow[x] = lut[v]
		}
	}
	return dst
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. If the path is
// not cached, Evict does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "webp",
	// or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// Grayscale indicates whether the decoded image is single-channel.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// The image is loaded into the cache if not already present. Returns an
// error if the image cannot be loaded or the file cannot be stat'd.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch filepath.Ext(path) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".webp":
		format = "webp"
	}

	grayscale := false
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		grayscale = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		Grayscale:     grayscale,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional
// metadata. The image is loaded into the cache if not already present.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
