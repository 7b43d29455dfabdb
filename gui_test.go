package quadfilter

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// contents returns what the window would draw in each quadrant.
func contents(g *Gui) [len(Quadrants)]Panel {
	var panels [len(Quadrants)]Panel
	for i := range g.panels {
		panels[i] = g.panels[i].Panel
	}
	return panels
}

func TestGui_DrawImage(t *testing.T) {
	gui := NewGUI(NewLayout(8, 4), "test")

	panels := testPanels(8, 4)
	for _, q := range Quadrants {
		gui.DrawImage(q, panels[q].Image, panels[q].Caption)
	}
	assert.Equal(t, panels, contents(gui))

	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	gui.DrawImage(LR, img, "replaced")
	got := contents(gui)
	assert.Same(t, img, got[LR].Image)
	assert.Equal(t, "replaced", got[LR].Caption)
	assert.Equal(t, panels[UL], got[UL])
}
