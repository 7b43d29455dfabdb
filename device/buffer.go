package device

import "fmt"

// Channels is the number of interleaved channels of an RGBA8 buffer.
const Channels = 4

// TextureID identifies a texture known to a Runtime. The zero value means no texture.
type TextureID uint32

// Buffer describes a three dimensional (x, y, channel) view over image memory.
// It never owns the host slice it points to. When the buffer is bound to a device
// texture, the texture is owned either by the runtime (allocated on demand) or by
// the caller (bound through WrapTexture).
type Buffer struct {
	// Host is the host memory backing the view. It may be nil for device only buffers.
	Host []uint8

	// Stride holds the distance in elements between two neighbours on each dimension.
	Stride [3]int

	// Extent holds the size of each dimension.
	Extent [3]int

	// ElemSize is the size in bytes of one element.
	ElemSize int

	// HostDirty marks host data newer than the device copy.
	HostDirty bool

	// DeviceDirty marks device data newer than the host copy.
	DeviceDirty bool

	dev     TextureID
	gen     uint64 // runtime context generation dev belongs to
	wrapped bool
}

// NewBuffer returns a descriptor for 8-bit RGBA data stored interleaved as
// rgbargba... in row-major order. The buffer has no host memory and no device binding.
func NewBuffer(width, height int) Buffer {
	return Buffer{
		Stride:   [3]int{Channels, Channels * width, 1},
		Extent:   [3]int{width, height, Channels},
		ElemSize: 1,
	}
}

// Width returns the x extent.
func (b *Buffer) Width() int { return b.Extent[0] }

// Height returns the y extent.
func (b *Buffer) Height() int { return b.Extent[1] }

// Channels returns the channel extent.
func (b *Buffer) Channels() int { return b.Extent[2] }

// Device returns the texture the buffer is bound to, or zero.
func (b *Buffer) Device() TextureID { return b.dev }

// Wrapped reports whether the bound texture is owned by the caller.
func (b *Buffer) Wrapped() bool { return b.wrapped }

// At returns the element offset of the (x, y, c) coordinate.
func (b *Buffer) At(x, y, c int) int {
	return x*b.Stride[0] + y*b.Stride[1] + c*b.Stride[2]
}

// Len returns the number of host bytes addressed by the layout.
func (b *Buffer) Len() int {
	if b.Extent[0] <= 0 || b.Extent[1] <= 0 || b.Extent[2] <= 0 {
		return 0
	}
	last := b.At(b.Extent[0]-1, b.Extent[1]-1, b.Extent[2]-1)
	return (last + 1) * b.ElemSize
}

// Packed reports whether the layout is the dense interleaved layout produced by NewBuffer.
func (b *Buffer) Packed() bool {
	return b.ElemSize == 1 &&
		b.Extent[2] == Channels &&
		b.Stride == [3]int{Channels, Channels * b.Extent[0], 1}
}

// Validate checks the buffer against the RGBA8 layout used by devices and
// the single source of truth invariant.
func (b *Buffer) Validate() error {
	if b.Extent[0] <= 0 || b.Extent[1] <= 0 {
		return fmt.Errorf("%w: extent %dx%d", ErrInvalidLayout, b.Extent[0], b.Extent[1])
	}
	if b.Extent[2] != Channels || b.ElemSize != 1 {
		return fmt.Errorf("%w: %d channels of %d bytes", ErrInvalidLayout, b.Extent[2], b.ElemSize)
	}
	if b.HostDirty && b.DeviceDirty {
		return ErrBothDirty
	}
	if b.Host == nil && b.dev == 0 {
		return ErrNoData
	}
	if b.Host != nil && len(b.Host) < b.Len() {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(b.Host), b.Len())
	}
	return nil
}

// pack copies the host view into a dense RGBA8 slice.
func (b *Buffer) pack() []uint8 {
	w, h := b.Width(), b.Height()
	if b.Packed() {
		return b.Host[:w*h*Channels]
	}
	dst := make([]uint8, w*h*Channels)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < Channels; c++ {
				dst[i] = b.Host[b.At(x, y, c)]
				i++
			}
		}
	}
	return dst
}

// unpack copies a dense RGBA8 slice into the host view.
func (b *Buffer) unpack(src []uint8) {
	w, h := b.Width(), b.Height()
	if b.Packed() {
		copy(b.Host, src[:w*h*Channels])
		return
	}
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < Channels; c++ {
				b.Host[b.At(x, y, c)] = src[i]
				i++
			}
		}
	}
}
