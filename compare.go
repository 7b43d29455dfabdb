package quadfilter

import (
	"errors"
	"fmt"
	"image"

	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/filter"
)

// InputCaption is the caption of the original image.
const InputCaption = "Input"

// Compare runs p over img with the three strategies and returns the panels
// to display: the input in UL, then the CPU, host-to-host and
// texture-to-texture results in UR, LL and LR.
//
// The textures created for the texture-to-texture run are deleted before
// Compare returns, on every path.
func Compare(rt *device.Runtime, p filter.Pipeline, img *image.NRGBA) (panels [len(Quadrants)]Panel, err error) {
	img = toNRGBA(img)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	size := width * height * device.Channels

	panels[UL] = Panel{Image: img, Caption: InputCaption}

	// Run the filter on the CPU.
	cpuResult := make([]uint8, size)
	report, err := RunCPUFilter(p, img.Pix, cpuResult, width, height)
	if err != nil {
		return panels, err
	}
	panels[UR] = Panel{Image: pixToImage(cpuResult, width, height), Caption: report}

	// Run the filter on the device with data starting from and ending up on the host.
	hostResult := make([]uint8, size)
	report, err = RunGPUFilterHostToHost(rt, p, img.Pix, hostResult, width, height)
	if err != nil {
		return panels, err
	}
	panels[LL] = Panel{Image: pixToImage(hostResult, width, height), Caption: report}

	// Run the filter on the device with data starting from and ending up in a texture.
	imageTex, err := rt.CreateTexture(width, height, img.Pix)
	if err != nil {
		return panels, fmt.Errorf("input texture: %w", err)
	}
	defer func() {
		err = errors.Join(err, rt.DeleteTexture(imageTex))
	}()

	resultTex, err := rt.CreateTexture(width, height, nil)
	if err != nil {
		return panels, fmt.Errorf("result texture: %w", err)
	}
	defer func() {
		err = errors.Join(err, rt.DeleteTexture(resultTex))
	}()

	report, err = RunGPUFilterTextureToTexture(rt, p, imageTex, resultTex, width, height)
	if err != nil {
		return panels, err
	}

	// The window draws host images, so the result texture is read back for display only.
	texResult := make([]uint8, size)
	if err := rt.ReadTexture(resultTex, texResult); err != nil {
		return panels, fmt.Errorf("result texture: %w", err)
	}
	panels[LR] = Panel{Image: pixToImage(texResult, width, height), Caption: report}

	return panels, nil
}
