package quadfilter

import (
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var (
	defaultBkgColor     = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	defaultCaptionColor = color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
)

// Panel is an image shown in one quadrant together with its caption.
type Panel struct {
	Image   image.Image
	Caption string
}

// Gui displays four captioned panels in a gio window.
type Gui struct {
	layout Layout
	title  string
	theme  *material.Theme
	panels [len(Quadrants)]struct {
		Panel
		src paint.ImageOp
	}
}

// NewGUI initializes the interface for the given layout.
func NewGUI(l Layout, title string) *Gui {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Palette.Fg = defaultCaptionColor
	th.Palette.Bg = defaultBkgColor

	return &Gui{layout: l, title: title, theme: th}
}

// DrawImage sets the content of a quadrant.
func (g *Gui) DrawImage(q Quadrant, img image.Image, caption string) {
	p := &g.panels[q]
	p.Image = img
	p.Caption = caption
	if img != nil {
		p.src = paint.NewImageOp(img)
	}
}

// Run opens the window and processes its events until the window is closed
// or the ESC key is pressed.
func (g *Gui) Run(w *app.Window) error {
	w.Option(
		app.Title(g.title),
		app.Size(unit.Dp(g.layout.WindowWidth), unit.Dp(g.layout.WindowHeight)),
	)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			for {
				ev, ok := gtx.Event(key.Filter{Name: key.NameEscape})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					w.Perform(system.ActionClose)
				}
			}
			g.draw(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// draw lays out the 2x2 grid.
func (g *Gui) draw(gtx C) D {
	paint.Fill(gtx.Ops, defaultBkgColor)

	row := func(left, right Quadrant) layout.FlexChild {
		return layout.Flexed(1, func(gtx C) D {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, g.cell(left)),
				layout.Flexed(1, g.cell(right)),
			)
		})
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		row(UL, UR),
		row(LL, LR),
	)
}

// cell returns the widget of a quadrant: the caption on top of the image.
func (g *Gui) cell(q Quadrant) layout.Widget {
	return func(gtx C) D {
		p := &g.panels[q]
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx C) D {
				gtx.Constraints.Min.Y = gtx.Dp(unit.Dp(CaptionHeight))
				return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx C) D {
					return material.Body1(g.theme, p.Caption).Layout(gtx)
				})
			}),
			layout.Flexed(1, func(gtx C) D {
				if p.Image == nil {
					return D{Size: gtx.Constraints.Max}
				}
				return widget.Image{
					Src:      p.src,
					Fit:      widget.Contain,
					Position: layout.Center,
				}.Layout(gtx)
			}),
		)
	}
}
