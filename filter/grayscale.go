package filter

import (
	_ "embed"

	"github.com/esimov/quadfilter/device"
)

//go:embed shaders/grayscale.wgsl
var grayscaleSource string

// Grayscale converts the image to grayscale using integer BT.601 weights.
type Grayscale struct {
	kernelPipeline
}

// NewGrayscale returns the grayscale pipeline.
func NewGrayscale() *Grayscale {
	return &Grayscale{newKernelPipeline("grayscale", grayscaleSource, grayscale)}
}

func grayscale(in, out *device.Buffer) error {
	w, h := in.Width(), in.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := in.Host[in.At(x, y, 0)]
			g := in.Host[in.At(x, y, 1)]
			b := in.Host[in.At(x, y, 2)]
			lum := uint8(luma(r, g, b))

			out.Host[out.At(x, y, 0)] = lum
			out.Host[out.At(x, y, 1)] = lum
			out.Host[out.At(x, y, 2)] = lum
			out.Host[out.At(x, y, 3)] = in.Host[in.At(x, y, 3)]
		}
	}
	return nil
}
