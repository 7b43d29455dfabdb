package filter

import (
	_ "embed"

	"github.com/esimov/quadfilter/device"
)

//go:embed shaders/blur.wgsl
var blurSource string

// Blur is a 3x3 box blur over the color channels. Alpha is left untouched
// and pixels outside the image are clamped to the edge.
type Blur struct {
	kernelPipeline
}

// NewBlur returns the box blur pipeline.
func NewBlur() *Blur {
	return &Blur{newKernelPipeline("blur", blurSource, blur)}
}

func blur(in, out *device.Buffer) error {
	w, h := in.Width(), in.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum [3]int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := clamp(x+dx, w), clamp(y+dy, h)
					for c := 0; c < 3; c++ {
						sum[c] += int(in.Host[in.At(sx, sy, c)])
					}
				}
			}
			for c := 0; c < 3; c++ {
				out.Host[out.At(x, y, c)] = uint8((sum[c] + 4) / 9)
			}
			out.Host[out.At(x, y, 3)] = in.Host[in.At(x, y, 3)]
		}
	}
	return nil
}
