package quadfilter

import (
	"image"
	"math"

	"github.com/esimov/quadfilter/utils"
)

// Quadrant identifies one of the four cells of the display.
type Quadrant int

// The four display cells, in reading order.
const (
	UL Quadrant = iota // upper left
	UR                 // upper right
	LL                 // lower left
	LR                 // lower right
)

// Quadrants lists every quadrant in reading order.
var Quadrants = [...]Quadrant{UL, UR, LL, LR}

func (q Quadrant) String() string {
	switch q {
	case UL:
		return "upper-left"
	case UR:
		return "upper-right"
	case LL:
		return "lower-left"
	case LR:
		return "lower-right"
	}
	return "unknown"
}

const (
	// MaxScreenX and MaxScreenY bound the window size.
	MaxScreenX = 1366
	MaxScreenY = 768

	// CaptionHeight is the height of the strip above each image holding its caption.
	CaptionHeight = 24
)

// Layout places four images of the same size in a 2x2 grid, each with a caption strip.
type Layout struct {
	ImageWidth, ImageHeight   int
	CellWidth, CellHeight     int
	WindowWidth, WindowHeight int
	Scale                     float64
}

// NewLayout computes the display of a width x height image. The grid is
// scaled down, keeping the aspect ratio, when it does not fit the screen.
func NewLayout(width, height int) Layout {
	ratio := 1.0
	if 2*width > MaxScreenX || 2*(height+CaptionHeight) > MaxScreenY {
		wr := float64(MaxScreenX) / float64(2*width)                  // width ratio
		hr := float64(MaxScreenY-2*CaptionHeight) / float64(2*height) // height ratio
		ratio = utils.Min(wr, hr)
	}
	cw := utils.Max(1, int(math.Round(float64(width)*ratio)))
	ch := utils.Max(1, int(math.Round(float64(height)*ratio)))

	return Layout{
		ImageWidth:   width,
		ImageHeight:  height,
		CellWidth:    cw,
		CellHeight:   ch,
		WindowWidth:  2 * cw,
		WindowHeight: 2 * (ch + CaptionHeight),
		Scale:        ratio,
	}
}

// origin returns the top left corner of the cell of q.
func (l Layout) origin(q Quadrant) image.Point {
	col, row := int(q)%2, int(q)/2
	return image.Pt(col*l.CellWidth, row*(l.CellHeight+CaptionHeight))
}

// Rect returns the window area of the image of q.
func (l Layout) Rect(q Quadrant) image.Rectangle {
	o := l.origin(q).Add(image.Pt(0, CaptionHeight))
	return image.Rectangle{Min: o, Max: o.Add(image.Pt(l.CellWidth, l.CellHeight))}
}

// CaptionRect returns the window area of the caption of q.
func (l Layout) CaptionRect(q Quadrant) image.Rectangle {
	o := l.origin(q)
	return image.Rectangle{Min: o, Max: o.Add(image.Pt(l.CellWidth, CaptionHeight))}
}

// Bounds returns the whole window area.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.WindowWidth, l.WindowHeight)
}
