package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// SaveImage writes an image to disk, choosing the encoder from the file
// extension.
//
// PNG, JPEG, GIF, TIFF, and BMP are encoded through the imaging package.
// WebP output uses lossless encoding so annotated overlays survive a
// round-trip without compression artifacts.
//
// Returns an error for unsupported extensions or encoder failures.
func SaveImage(img image.Image, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
		return nil
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
