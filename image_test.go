package quadfilter

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeNRGBAImage(rect image.Rectangle, colors []color.Color) *image.NRGBA {
	img := image.NewNRGBA(rect)
	fillDrawImage(img, colors)
	return img
}

func fillDrawImage(img draw.Image, colors []color.Color) {
	rect := img.Bounds()
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := color.NRGBAModel.Convert(colors[i%len(colors)]).(color.NRGBA)
			c.A = uint8(i % 256)
			img.Set(x, y, c)
			i++
		}
	}
}

func writeImage(t *testing.T, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		require.NoError(t, png.Encode(f, img))
	case ".jpg":
		require.NoError(t, jpeg.Encode(f, img, nil))
	}
	return path
}

func TestImage_ToNRGBA(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)
	testCases := []struct {
		name string
		img  image.Image
	}{
		{
			name: "NRGBA",
			img:  makeNRGBAImage(rect, palette.Plan9),
		},
		{
			name: "NRGBA-SubImage",
			img:  makeNRGBAImage(rect, palette.Plan9).SubImage(image.Rect(2, 3, 9, 7)),
		},
		{
			name: "Gray",
			img:  image.NewGray(rect),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := tc.img.Bounds()
			dst := toNRGBA(tc.img)

			assert.Equal(t, image.Point{}, dst.Bounds().Min)
			assert.Equal(t, src.Size(), dst.Bounds().Size())
			assert.Equal(t, src.Dx()*4, dst.Stride)

			for y := 0; y < src.Dy(); y++ {
				for x := 0; x < src.Dx(); x++ {
					want := color.NRGBAModel.Convert(tc.img.At(src.Min.X+x, src.Min.Y+y))
					assert.Equal(t, want, dst.NRGBAAt(x, y))
				}
			}
		})
	}
}

func TestImage_ToNRGBAKeepsDenseImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, img, toNRGBA(img))
}

func TestImage_LoadPNG(t *testing.T) {
	src := makeNRGBAImage(image.Rect(0, 0, 7, 5), palette.WebSafe)
	path := writeImage(t, "sample.png", src)

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)
	assert.Equal(t, 7*4, img.Stride)
}

func TestImage_LoadJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 8))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.RGBA{200, 100, 50, 255}), image.Point{}, draw.Src)
	path := writeImage(t, "sample.jpg", src)

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assert.Equal(t, uint8(255), img.Pix[3])
}

func TestImage_LoadFromURL(t *testing.T) {
	src := makeNRGBAImage(image.Rect(0, 0, 3, 3), palette.Plan9)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		png.Encode(w, src)
	}))
	defer srv.Close()

	img, err := LoadImage(srv.URL + "/sample.png")
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)
}

func TestImage_LoadErrors(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("this is not an image"), 0o644))
	_, err = LoadImage(path)
	assert.ErrorContains(t, err, "not an image")
}

func TestImage_PixToImage(t *testing.T) {
	pix := make([]uint8, 3*2*4)
	img := pixToImage(pix, 3, 2)

	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	img.SetNRGBA(2, 1, color.NRGBA{1, 2, 3, 4})
	assert.Equal(t, []uint8{1, 2, 3, 4}, pix[20:])
}
