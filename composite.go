package quadfilter

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Composite renders the four panels into a single image using the window
// layout. Images are scaled into their cell and captions are drawn on top.
func Composite(l Layout, panels [len(Quadrants)]Panel) *image.NRGBA {
	dst := image.NewNRGBA(l.Bounds())
	draw.Draw(dst, dst.Bounds(), image.NewUniform(defaultBkgColor), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	for _, q := range Quadrants {
		p := panels[q]
		if p.Image != nil {
			xdraw.ApproxBiLinear.Scale(dst, l.Rect(q), p.Image, p.Image.Bounds(), xdraw.Over, nil)
		}

		cr := l.CaptionRect(q)
		baseline := cr.Min.Y + (CaptionHeight+face.Metrics().Ascent.Ceil())/2
		d := font.Drawer{
			Dst:  dst.SubImage(cr).(*image.NRGBA),
			Src:  image.NewUniform(defaultCaptionColor),
			Face: face,
			Dot:  fixed.P(cr.Min.X+4, baseline),
		}
		d.DrawString(p.Caption)
	}
	return dst
}

// SaveComposite renders the panels and writes them to path. The image
// format is derived from the file extension.
func SaveComposite(path string, l Layout, panels [len(Quadrants)]Panel) error {
	if err := imaging.Save(Composite(l, panels), path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return nil
}
