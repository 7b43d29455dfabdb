package filter

import (
	_ "embed"

	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/utils"
)

//go:embed shaders/sobel.wgsl
var sobelSource string

// SobelThreshold is the magnitude at or below which an edge is discarded.
const SobelThreshold = 10

type kernel [3][3]int

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Sobel detects the image edges on the luminance channel.
// The magnitude is approximated with |gx| + |gy| so it stays integral.
// See https://en.wikipedia.org/wiki/Sobel_operator
type Sobel struct {
	kernelPipeline
}

// NewSobel returns the edge detection pipeline.
func NewSobel() *Sobel {
	return &Sobel{newKernelPipeline("sobel", sobelSource, sobel)}
}

func sobel(in, out *device.Buffer) error {
	w, h := in.Width(), in.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumX, sumY int
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					sx, sy := clamp(x+kx-1, w), clamp(y+ky-1, h)
					l := luma(
						in.Host[in.At(sx, sy, 0)],
						in.Host[in.At(sx, sy, 1)],
						in.Host[in.At(sx, sy, 2)],
					)
					sumX += l * kernelX[ky][kx]
					sumY += l * kernelY[ky][kx]
				}
			}
			magnitude := utils.Min(utils.Abs(sumX)+utils.Abs(sumY), 255)
			if magnitude <= SobelThreshold {
				magnitude = 0
			}

			m := uint8(magnitude)
			out.Host[out.At(x, y, 0)] = m
			out.Host[out.At(x, y, 1)] = m
			out.Host[out.At(x, y, 2)] = m
			out.Host[out.At(x, y, 3)] = in.Host[in.At(x, y, 3)]
		}
	}
	return nil
}
