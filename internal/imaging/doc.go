// Package imaging provides image loading, grayscale conversion, and basic
// geometric types shared by the keypoint packages.
//
// This package owns file I/O (decode, cache, save), conversion of arbitrary
// images to single-channel grayscale buffers, and the Point2f type used to
// carry subpixel keypoint coordinates. All pixel operations use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and
// Y increases downward.
//
// # Grayscale Convention
//
// Corner detection and template matching operate on *image.Gray with bounds
// anchored at (0,0). ToGray and LoadGray guarantee this layout; other images
// should be passed through ToGray before reaching the detection packages.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions
// are stateless and can be called concurrently on independent images.
//
// # Error Handling
//
// Functions return errors for I/O failures, undecodable files, and
// unsupported output formats. Pure pixel transformations (ToGray,
// EqualizeGray) never fail.
package imaging
