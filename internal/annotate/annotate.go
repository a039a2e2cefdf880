// Package annotate renders detection results onto images for visual
// inspection.
//
// All functions return a new RGBA canvas and leave the source image
// untouched. Grayscale sources are promoted to color first so overlays can
// be drawn in full color, matching the usual debugging workflow of a
// feature-tracking front-end.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vulturest/keypoint-tools/internal/imaging"
)

// Style controls how keypoints are rendered.
type Style struct {
	// Color is the marker color. The zero value enables score-ramp
	// coloring: each marker is colored by its score relative to the
	// strongest one, blue (weak) through red (strong).
	Color color.RGBA

	// Radius is the marker radius in pixels. Zero means the default of 3.
	Radius int

	// ShowScores draws each point's numeric score next to its marker.
	// Ignored when no scores are supplied.
	ShowScores bool
}

// DefaultStyle renders green markers of radius 3 without score labels.
func DefaultStyle() Style {
	return Style{Color: color.RGBA{0, 255, 0, 255}, Radius: 3}
}

// DrawCorners returns a copy of the image with a circle at every corner.
//
// Scores may be nil; when present it must be the same length as corners
// and is used for score-ramp coloring and the optional labels. Points
// outside the image are skipped silently.
func DrawCorners(img image.Image, corners []imaging.Point2f, scores []float64, style Style) *image.RGBA {
	canvas := toCanvas(img)
	radius := style.Radius
	if radius <= 0 {
		radius = 3
	}
	maxScore := maxOf(scores)

	for i, pt := range corners {
		col := markerColor(style, scores, i, maxScore)
		drawCircle(canvas, int(pt.X+0.5), int(pt.Y+0.5), radius, col)
		if style.ShowScores && i < len(scores) {
			label := fmt.Sprintf("%.3g", scores[i])
			drawLabel(canvas, int(pt.X)-10, int(pt.Y)-5, label, col)
		}
	}
	return canvas
}

// DrawCrosses returns a copy of the image with an X marker at every corner.
// Semantics otherwise match DrawCorners.
func DrawCrosses(img image.Image, corners []imaging.Point2f, scores []float64, style Style) *image.RGBA {
	canvas := toCanvas(img)
	arm := style.Radius
	if arm <= 0 {
		arm = 3
	}
	maxScore := maxOf(scores)

	for i, pt := range corners {
		col := markerColor(style, scores, i, maxScore)
		x := int(pt.X + 0.5)
		y := int(pt.Y + 0.5)
		drawLine(canvas, x-arm, y-arm, x+arm, y+arm, col)
		drawLine(canvas, x-arm, y+arm, x+arm, y-arm, col)
		if style.ShowScores && i < len(scores) {
			label := fmt.Sprintf("%.3g", scores[i])
			drawLabel(canvas, x-10, y-5, label, col)
		}
	}
	return canvas
}

// SideBySide concatenates two images horizontally onto one canvas. The
// canvas height is the taller of the two; the shorter image is top-aligned
// over black padding.
func SideBySide(left, right image.Image) *image.RGBA {
	lb := left.Bounds()
	rb := right.Bounds()
	h := lb.Dy()
	if rb.Dy() > h {
		h = rb.Dy()
	}
	canvas := image.NewRGBA(image.Rect(0, 0, lb.Dx()+rb.Dx(), h))
	draw.Draw(canvas, image.Rect(0, 0, lb.Dx(), lb.Dy()), left, lb.Min, draw.Src)
	draw.Draw(canvas, image.Rect(lb.Dx(), 0, lb.Dx()+rb.Dx(), rb.Dy()), right, rb.Min, draw.Src)
	return canvas
}

// Match pairs an index into a left-image point list with an index into a
// right-image point list.
type Match struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// DrawMatches renders two images side by side with a line and a circle
// pair for every match.
//
// Returns an error if any match index is out of range for its point list.
// Colors cycle through an HSV wheel so neighboring lines stay visually
// distinct.
func DrawMatches(left image.Image, leftPts []imaging.Point2f,
	right image.Image, rightPts []imaging.Point2f, matches []Match) (*image.RGBA, error) {

	canvas := SideBySide(left, right)
	offset := left.Bounds().Dx()

	for i, m := range matches {
		if m.Left < 0 || m.Left >= len(leftPts) || m.Right < 0 || m.Right >= len(rightPts) {
			return nil, fmt.Errorf("annotate: match %d indexes (%d,%d) outside point lists (%d,%d)",
				i, m.Left, m.Right, len(leftPts), len(rightPts))
		}
		hue := float64(i%12) * 30.0
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		col := color.RGBA{r, g, b, 255}

		lp := leftPts[m.Left]
		rp := rightPts[m.Right]
		x1, y1 := int(lp.X+0.5), int(lp.Y+0.5)
		x2, y2 := int(rp.X+0.5)+offset, int(rp.Y+0.5)

		drawLine(canvas, x1, y1, x2, y2, col)
		drawCircle(canvas, x1, y1, 3, col)
		drawCircle(canvas, x2, y2, 3, col)
	}
	return canvas, nil
}

// toCanvas copies any image onto a fresh RGBA canvas anchored at (0,0).
func toCanvas(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)
	return canvas
}

// markerColor picks the fixed style color, or a position on the blue-to-red
// score ramp when the style color is unset and scores are available.
func markerColor(style Style, scores []float64, i int, maxScore float64) color.RGBA {
	if style.Color != (color.RGBA{}) {
		return style.Color
	}
	if i >= len(scores) || maxScore <= 0 {
		return color.RGBA{0, 255, 0, 255}
	}
	t := scores[i] / maxScore
	if t < 0 {
		t = 0
	}
	// Hue 240 (blue) for the weakest through 0 (red) for the strongest.
	r, g, b := colorful.Hsv(240*(1-t), 1, 1).RGB255()
	return color.RGBA{r, g, b, 255}
}

func maxOf(vals []float64) float64 {
	max := 0.0
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}

// drawCircle draws a 1px circle outline using the midpoint algorithm,
// skipping pixels outside the canvas.
func drawCircle(canvas *image.RGBA, cx, cy, radius int, col color.RGBA) {
	x, y := radius, 0
	err := 1 - radius
	for x >= y {
		setPixel(canvas, cx+x, cy+y, col)
		setPixel(canvas, cx+y, cy+x, col)
		setPixel(canvas, cx-y, cy+x, col)
		setPixel(canvas, cx-x, cy+y, col)
		setPixel(canvas, cx-x, cy-y, col)
		setPixel(canvas, cx-y, cy-x, col)
		setPixel(canvas, cx+y, cy-x, col)
		setPixel(canvas, cx+x, cy-y, col)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// drawLine draws a 1px line segment using Bresenham's algorithm.
func drawLine(canvas *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(canvas, x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawLabel renders small text at the given position using the basicfont
// face. The position is the top-left corner of the text box.
func drawLabel(canvas *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+basicfont.Face7x13.Ascent),
	}
	d.DrawString(text)
}

func setPixel(canvas *image.RGBA, x, y int, col color.RGBA) {
	if x < 0 || y < 0 || x >= canvas.Bounds().Dx() || y >= canvas.Bounds().Dy() {
		return
	}
	canvas.SetRGBA(x, y, col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
