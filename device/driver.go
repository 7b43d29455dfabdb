package device

import "fmt"

// Kernel is a prebuilt filter stage that a Driver can execute.
//
// Source is a WGSL compute shader with entry point "main", workgroup size 8x8,
// binding 0 the source texture_2d<f32> and binding 1 the destination
// texture_storage_2d<rgba8unorm, write>. Host is the same computation over
// host memory, used by drivers without shader support.
type Kernel struct {
	Name   string
	Source string
	Host   func(in, out *Buffer) error
}

// Driver is a GPU backend holding RGBA8 textures and running kernels over them.
// Texture data crossing the interface is always dense, row-major RGBA8.
type Driver interface {
	// Name returns the backend name (e.g. "wgpu", "soft").
	Name() string

	// CreateTexture allocates an uninitialized width x height texture.
	CreateTexture(width, height int) (TextureID, error)

	// WriteTexture replaces the texture content with pix.
	WriteTexture(id TextureID, pix []uint8) error

	// ReadTexture copies the texture content into dst.
	ReadTexture(id TextureID, dst []uint8) error

	// DeleteTexture releases the texture.
	DeleteTexture(id TextureID) error

	// Dispatch runs the kernel reading in and writing out.
	Dispatch(k *Kernel, in, out TextureID) error

	// Release frees every resource held by the driver.
	Release()
}

// ContextProvider creates the GPU context a Runtime works with.
// Host applications that already own a device inject their own provider.
type ContextProvider interface {
	CreateContext() (Driver, error)
}

// ContextProviderFunc adapts a function to the ContextProvider interface.
type ContextProviderFunc func() (Driver, error)

// CreateContext calls f.
func (f ContextProviderFunc) CreateContext() (Driver, error) {
	return f()
}

// FallbackProvider returns a provider trying primary first and fallback
// when the primary context cannot be created.
func FallbackProvider(primary, fallback ContextProvider) ContextProvider {
	return ContextProviderFunc(func() (Driver, error) {
		drv, err := primary.CreateContext()
		if err == nil {
			return drv, nil
		}
		Logger().Warn("device: falling back", "reason", err)

		drv, ferr := fallback.CreateContext()
		if ferr != nil {
			return nil, fmt.Errorf("primary: %v, fallback: %w", err, ferr)
		}
		return drv, nil
	})
}
