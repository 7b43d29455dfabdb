package quadfilter

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/utils"
	_ "golang.org/x/image/webp"
)

// LoadImage decodes the image found at src, a local path or an http(s) URL,
// into a dense RGBA8 image with its origin at (0, 0).
func LoadImage(src string) (*image.NRGBA, error) {
	path := src
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		defer f.Close()

		path = f.Name()
	}

	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the source image: %w", err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%s is not an image file (%s)", src, ctype)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image type to a dense *image.NRGBA with min-point at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok {
		b := src.Bounds()
		if b.Min == (image.Point{}) && src.Stride == b.Dx()*device.Channels {
			return src
		}
	}
	return imaging.Clone(img)
}

// pixToImage wraps a dense RGBA8 buffer as an image without copying it.
func pixToImage(pix []uint8, width, height int) *image.NRGBA {
	return &image.NRGBA{
		Pix:    pix,
		Stride: width * device.Channels,
		Rect:   image.Rect(0, 0, width, height),
	}
}
