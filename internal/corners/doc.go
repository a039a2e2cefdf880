// Package corners implements score-aware corner detection for grayscale
// images.
//
// The detector finds good, trackable feature points and, unlike typical
// library entry points, also returns the numeric cornerness strength of
// every surviving point, so downstream consumers can rank or gate features
// by quality.
//
// # Pipeline
//
// Detection runs four stages strictly in sequence on a single image:
//
//  1. Response map: a dense per-pixel cornerness score computed from the
//     local gradient structure tensor, using either the Harris measure or
//     the minimum-eigenvalue (Shi-Tomasi) measure.
//  2. Candidate extraction: a relative quality threshold followed by a 3x3
//     local-maximum test produces a sparse candidate list, sorted by
//     descending score.
//  3. Spatial suppression: candidates are accepted greedily in score order;
//     any candidate closer than a minimum distance to an already-accepted
//     corner is rejected. A uniform grid bounds the neighbor search so the
//     greedy pass runs near-linearly in the candidate count.
//  4. Subpixel refinement: each accepted location is iteratively nudged to
//     subpixel precision using the gradients inside a fixed window.
//
// Data flows one way: image -> response map -> candidates -> accepted set
// -> refined set. Only the refiner modifies coordinates, and it never
// reorders or drops points.
//
// # Error Handling
//
// Malformed parameters (even block size, quality level outside (0,1], mask
// dimension mismatch) fail fast with an error. Image-content degeneracies
// (flat images, fully masked inputs, zero candidates after thresholding)
// are not errors: the detector returns empty, same-length corner and score
// slices so a frame-by-frame tracking pipeline can keep running.
//
// # Concurrency
//
// Detection is single-threaded and purely CPU-bound. All working buffers
// are local to one call, so it is safe to run concurrent detections on
// independent images.
package corners
