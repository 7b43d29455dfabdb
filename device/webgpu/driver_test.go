//go:build !nogpu

package webgpu

import (
	"errors"
	"testing"

	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDriver returns a driver or skips the test on machines without a usable adapter.
func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(Options{})
	if errors.Is(err, device.ErrUnavailable) {
		d, err = New(Options{ForceFallbackAdapter: true})
	}
	if errors.Is(err, device.ErrUnavailable) {
		t.Skipf("no wgpu adapter: %v", err)
	}
	require.NoError(t, err)
	t.Cleanup(d.Release)

	return d
}

func TestDriver_TextureRoundTrip(t *testing.T) {
	d := newTestDriver(t)

	// 67 pixels wide rows are not a multiple of the copy alignment.
	w, h := 67, 5
	pix := make([]uint8, w*h*device.Channels)
	for i := range pix {
		pix[i] = uint8(i * 31)
	}

	id, err := d.CreateTexture(w, h)
	require.NoError(t, err)
	require.NoError(t, d.WriteTexture(id, pix))

	dst := make([]uint8, len(pix))
	require.NoError(t, d.ReadTexture(id, dst))
	assert.Equal(t, pix, dst)

	require.NoError(t, d.DeleteTexture(id))
	assert.ErrorIs(t, d.DeleteTexture(id), device.ErrUnknownTexture)
}

func TestDriver_MatchesHost(t *testing.T) {
	d := newTestDriver(t)
	rt := device.NewRuntime(device.ContextProviderFunc(func() (device.Driver, error) {
		return d, nil
	}))

	w, h := 21, 11
	src := make([]uint8, w*h*device.Channels)
	for i := range src {
		src[i] = uint8((i*7 + i/5) % 256)
	}

	for _, name := range filter.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := filter.Lookup(name)
			require.NoError(t, err)

			in := device.NewBuffer(w, h)
			in.Host = src
			want := device.NewBuffer(w, h)
			want.Host = make([]uint8, len(src))
			require.NoError(t, p.CPU(&in, &want))

			in.HostDirty = true
			got := device.NewBuffer(w, h)
			got.Host = make([]uint8, len(src))
			require.NoError(t, p.GPU(rt, &in, &got))
			require.NoError(t, rt.CopyToHost(&got))
			require.NoError(t, rt.Free(&in))
			require.NoError(t, rt.Free(&got))

			assert.Equal(t, want.Host, got.Host)
		})
	}
}

func TestDriver_TextureToTextureMatchesHost(t *testing.T) {
	d := newTestDriver(t)
	rt := device.NewRuntime(device.ContextProviderFunc(func() (device.Driver, error) {
		return d, nil
	}))

	w, h := 19, 13
	src := make([]uint8, w*h*device.Channels)
	for i := range src {
		src[i] = uint8((i*13 + i/7) % 256)
	}

	for _, name := range filter.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := filter.Lookup(name)
			require.NoError(t, err)

			in := device.NewBuffer(w, h)
			in.Host = src
			want := device.NewBuffer(w, h)
			want.Host = make([]uint8, len(src))
			require.NoError(t, p.CPU(&in, &want))

			inTex, err := rt.CreateTexture(w, h, src)
			require.NoError(t, err)
			defer rt.DeleteTexture(inTex)
			outTex, err := rt.CreateTexture(w, h, nil)
			require.NoError(t, err)
			defer rt.DeleteTexture(outTex)

			wrappedIn := device.NewBuffer(w, h)
			require.NoError(t, rt.WrapTexture(&wrappedIn, inTex))
			wrappedOut := device.NewBuffer(w, h)
			require.NoError(t, rt.WrapTexture(&wrappedOut, outTex))

			require.NoError(t, p.GPU(rt, &wrappedIn, &wrappedOut))
			_, err = rt.DetachTexture(&wrappedOut)
			require.NoError(t, err)
			_, err = rt.DetachTexture(&wrappedIn)
			require.NoError(t, err)

			got := make([]uint8, len(src))
			require.NoError(t, rt.ReadTexture(outTex, got))
			assert.Equal(t, want.Host, got)

			// The input texture is left as uploaded.
			require.NoError(t, rt.ReadTexture(inTex, got))
			assert.Equal(t, src, got)
		})
	}
}
