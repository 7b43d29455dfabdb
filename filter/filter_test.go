package filter

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/device/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newImage returns a host buffer filled with fn(x, y) for every pixel.
func newImage(w, h int, fn func(x, y int) [4]uint8) device.Buffer {
	b := device.NewBuffer(w, h)
	b.Host = make([]uint8, w*h*device.Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := fn(x, y)
			copy(b.Host[b.At(x, y, 0):], px[:])
		}
	}
	return b
}

func noise(seed int64) func(x, y int) [4]uint8 {
	rnd := rand.New(rand.NewSource(seed))
	return func(int, int) [4]uint8 {
		return [4]uint8{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256))}
	}
}

func solid(c [4]uint8) func(x, y int) [4]uint8 {
	return func(int, int) [4]uint8 { return c }
}

func runCPU(t *testing.T, p Pipeline, in device.Buffer) device.Buffer {
	t.Helper()
	out := newImage(in.Width(), in.Height(), solid([4]uint8{}))
	require.NoError(t, p.CPU(&in, &out))
	return out
}

func TestGrayscale_KnownValues(t *testing.T) {
	p := NewGrayscale()

	out := runCPU(t, p, newImage(2, 2, solid([4]uint8{177, 177, 177, 255})))
	for i := 0; i < len(out.Host); i += 4 {
		assert.Equal(t, []uint8{177, 177, 177, 255}, out.Host[i:i+4])
	}

	out = runCPU(t, p, newImage(1, 1, solid([4]uint8{255, 0, 0, 40})))
	assert.Equal(t, []uint8{76, 76, 76, 40}, out.Host)
}

func TestBlur_KnownValues(t *testing.T) {
	p := NewBlur()

	out := runCPU(t, p, newImage(4, 3, solid([4]uint8{10, 20, 30, 200})))
	for i := 0; i < len(out.Host); i += 4 {
		assert.Equal(t, []uint8{10, 20, 30, 200}, out.Host[i:i+4])
	}

	// A single lit pixel in the middle of a 3x3 image spreads evenly.
	out = runCPU(t, p, newImage(3, 3, func(x, y int) [4]uint8 {
		if x == 1 && y == 1 {
			return [4]uint8{90, 90, 90, 255}
		}
		return [4]uint8{0, 0, 0, 255}
	}))
	for i := 0; i < len(out.Host); i += 4 {
		assert.Equal(t, []uint8{10, 10, 10, 255}, out.Host[i:i+4])
	}
}

func TestSobel_KnownValues(t *testing.T) {
	p := NewSobel()

	out := runCPU(t, p, newImage(4, 4, solid([4]uint8{100, 150, 200, 255})))
	for i := 0; i < len(out.Host); i += 4 {
		assert.Equal(t, []uint8{0, 0, 0, 255}, out.Host[i:i+4])
	}

	// A vertical black to white edge.
	out = runCPU(t, p, newImage(2, 1, func(x, y int) [4]uint8 {
		if x == 0 {
			return [4]uint8{0, 0, 0, 255}
		}
		return [4]uint8{255, 255, 255, 255}
	}))
	assert.Equal(t, []uint8{255, 255, 255, 255, 255, 255, 255, 255}, out.Host)
}

func TestPipeline_CPUErrors(t *testing.T) {
	p := NewBlur()

	in := newImage(2, 2, solid([4]uint8{}))
	out := device.NewBuffer(2, 2)
	assert.ErrorIs(t, p.CPU(&in, &out), device.ErrNoHost)

	out = newImage(3, 3, solid([4]uint8{}))
	assert.ErrorIs(t, p.CPU(&in, &out), device.ErrSizeMismatch)

	out = newImage(2, 2, solid([4]uint8{}))
	out.Host = out.Host[:7]
	assert.ErrorIs(t, p.CPU(&in, &out), device.ErrShortBuffer)
}

func TestPipeline_CPUMatchesGPU(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Lookup(name)
			require.NoError(t, err)

			rt := device.NewRuntime(soft.Provider())
			defer rt.ContextLost()

			in := newImage(13, 7, noise(int64(len(name))))
			cpu := runCPU(t, p, in)

			in.HostDirty = true
			gpu := newImage(13, 7, solid([4]uint8{}))
			require.NoError(t, p.GPU(rt, &in, &gpu))
			require.NoError(t, rt.CopyToHost(&gpu))

			assert.Equal(t, cpu.Host, gpu.Host)
		})
	}
}

func TestPipeline_Shader(t *testing.T) {
	for _, p := range []*kernelPipeline{&NewBlur().kernelPipeline, &NewGrayscale().kernelPipeline, &NewSobel().kernelPipeline} {
		k := &p.kernel
		assert.Equal(t, p.Name(), k.Name)
		assert.NotNil(t, k.Host)
		assert.True(t, strings.Contains(k.Source, "@compute @workgroup_size(8, 8)"), k.Name)
		assert.True(t, strings.Contains(k.Source, "fn main("), k.Name)
		assert.True(t, strings.Contains(k.Source, "texture_storage_2d<rgba8unorm, write>"), k.Name)
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"blur", "grayscale", "sobel"}, Names())

	p, err := Lookup(Default)
	require.NoError(t, err)
	assert.Equal(t, Default, p.Name())

	_, err = Lookup("sharpen")
	assert.Error(t, err)
}
