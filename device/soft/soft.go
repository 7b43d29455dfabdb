// Package soft implements a device driver keeping textures in host memory.
// Kernels run through their host implementation, which makes the driver a
// reference for the hardware backends and a fallback where no GPU is present.
package soft

import (
	"errors"
	"fmt"

	"github.com/esimov/quadfilter/device"
)

// Name is the backend name reported by the driver.
const Name = "soft"

var errReleased = errors.New("soft: driver released")

type texture struct {
	width, height int
	pix           []uint8
}

// Driver is a software implementation of device.Driver.
type Driver struct {
	next     device.TextureID
	textures map[device.TextureID]*texture
	released bool
}

var _ device.Driver = (*Driver)(nil)

// New returns a ready to use software driver.
func New() *Driver {
	return &Driver{textures: make(map[device.TextureID]*texture)}
}

// Provider returns a context provider creating a new software driver on each call.
func Provider() device.ContextProvider {
	return device.ContextProviderFunc(func() (device.Driver, error) {
		return New(), nil
	})
}

// Name implements device.Driver.
func (d *Driver) Name() string { return Name }

// Len returns the number of live textures.
func (d *Driver) Len() int { return len(d.textures) }

// CreateTexture implements device.Driver.
func (d *Driver) CreateTexture(width, height int) (device.TextureID, error) {
	if d.released {
		return 0, errReleased
	}
	d.next++
	d.textures[d.next] = &texture{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*device.Channels),
	}
	return d.next, nil
}

func (d *Driver) lookup(id device.TextureID) (*texture, error) {
	if d.released {
		return nil, errReleased
	}
	tex, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrUnknownTexture, id)
	}
	return tex, nil
}

// WriteTexture implements device.Driver.
func (d *Driver) WriteTexture(id device.TextureID, pix []uint8) error {
	tex, err := d.lookup(id)
	if err != nil {
		return err
	}
	if len(pix) < len(tex.pix) {
		return fmt.Errorf("%w: have %d bytes, need %d", device.ErrShortBuffer, len(pix), len(tex.pix))
	}
	copy(tex.pix, pix)
	return nil
}

// ReadTexture implements device.Driver.
func (d *Driver) ReadTexture(id device.TextureID, dst []uint8) error {
	tex, err := d.lookup(id)
	if err != nil {
		return err
	}
	if len(dst) < len(tex.pix) {
		return fmt.Errorf("%w: have %d bytes, need %d", device.ErrShortBuffer, len(dst), len(tex.pix))
	}
	copy(dst, tex.pix)
	return nil
}

// DeleteTexture implements device.Driver.
func (d *Driver) DeleteTexture(id device.TextureID) error {
	if _, err := d.lookup(id); err != nil {
		return err
	}
	delete(d.textures, id)
	return nil
}

// Dispatch implements device.Driver by running the host version of the kernel.
func (d *Driver) Dispatch(k *device.Kernel, in, out device.TextureID) error {
	if k.Host == nil {
		return fmt.Errorf("soft: kernel %q has no host implementation", k.Name)
	}
	src, err := d.lookup(in)
	if err != nil {
		return err
	}
	dst, err := d.lookup(out)
	if err != nil {
		return err
	}
	if src.width != dst.width || src.height != dst.height {
		return device.ErrSizeMismatch
	}

	inBuf := device.NewBuffer(src.width, src.height)
	inBuf.Host = src.pix
	outBuf := device.NewBuffer(dst.width, dst.height)
	outBuf.Host = dst.pix

	return k.Host(&inBuf, &outBuf)
}

// Release implements device.Driver.
func (d *Driver) Release() {
	d.textures = make(map[device.TextureID]*texture)
	d.released = true
}
