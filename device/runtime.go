package device

import (
	"fmt"
	"sync"
)

type texture struct {
	width, height int
	owned         bool // allocated by the runtime on behalf of a buffer
}

// Runtime tracks the textures bound to buffers and moves data between host
// and device. The GPU context is created on first use through the injected
// ContextProvider and kept until ContextLost.
//
// A Runtime is meant to be driven from a single goroutine. The mutex only
// guards its bookkeeping.
type Runtime struct {
	mu       sync.Mutex
	provider ContextProvider
	drv      Driver
	textures map[TextureID]*texture
	gen      uint64 // bumped by ContextLost; driver ids are reused across contexts
}

// NewRuntime returns a runtime creating its context through provider.
func NewRuntime(provider ContextProvider) *Runtime {
	return &Runtime{
		provider: provider,
		textures: make(map[TextureID]*texture),
	}
}

// Backend returns the active driver name, or an empty string before first use.
func (r *Runtime) Backend() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drv == nil {
		return ""
	}
	return r.drv.Name()
}

// driver returns the active driver, creating the context if needed. Caller must hold the lock.
func (r *Runtime) driver() (Driver, error) {
	if r.drv != nil {
		return r.drv, nil
	}
	if r.provider == nil {
		return nil, ErrNoProvider
	}
	drv, err := r.provider.CreateContext()
	if err != nil {
		return nil, fmt.Errorf("could not create the GPU context: %w", err)
	}
	Logger().Info("device: context created", "backend", drv.Name())
	r.drv = drv
	return drv, nil
}

// CreateTexture allocates a caller owned texture and fills it with pix when pix is not nil.
func (r *Runtime) CreateTexture(width, height int, pix []uint8) (TextureID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createTexture(width, height, pix, false)
}

func (r *Runtime) createTexture(width, height int, pix []uint8, owned bool) (TextureID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: extent %dx%d", ErrInvalidLayout, width, height)
	}
	if pix != nil && len(pix) < width*height*Channels {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pix), width*height*Channels)
	}
	drv, err := r.driver()
	if err != nil {
		return 0, err
	}
	id, err := drv.CreateTexture(width, height)
	if err != nil {
		return 0, fmt.Errorf("could not create texture: %w", err)
	}
	if pix != nil {
		if err := drv.WriteTexture(id, pix); err != nil {
			_ = drv.DeleteTexture(id)
			return 0, fmt.Errorf("could not upload texture: %w", err)
		}
	}
	r.textures[id] = &texture{width: width, height: height, owned: owned}
	Logger().Debug("device: texture created", "id", id, "width", width, "height", height, "owned", owned)

	return id, nil
}

// DeleteTexture releases a texture.
func (r *Runtime) DeleteTexture(id TextureID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteTexture(id)
}

func (r *Runtime) deleteTexture(id TextureID) error {
	if _, ok := r.textures[id]; !ok || r.drv == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	delete(r.textures, id)
	Logger().Debug("device: texture deleted", "id", id)

	return r.drv.DeleteTexture(id)
}

// ReadTexture copies the content of a texture into dst.
func (r *Runtime) ReadTexture(id TextureID, dst []uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tex, ok := r.textures[id]
	if !ok || r.drv == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if need := tex.width * tex.height * Channels; len(dst) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(dst), need)
	}
	return r.drv.ReadTexture(id, dst)
}

// WrapTexture binds b to an existing caller owned texture. The buffer needs no host memory.
func (r *Runtime) WrapTexture(b *Buffer, id TextureID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.dev != 0 {
		return ErrAlreadyBound
	}
	tex, ok := r.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if tex.width != b.Width() || tex.height != b.Height() {
		return fmt.Errorf("%w: texture %dx%d, buffer %dx%d",
			ErrSizeMismatch, tex.width, tex.height, b.Width(), b.Height())
	}
	b.dev = id
	b.gen = r.gen
	b.wrapped = true

	return nil
}

// DetachTexture unbinds a texture bound through WrapTexture and returns it.
// No further device side mutation happens through b afterwards.
func (r *Runtime) DetachTexture(b *Buffer) (TextureID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.dev == 0 || !b.wrapped {
		return 0, ErrNotWrapped
	}
	id := b.dev
	b.dev = 0
	b.wrapped = false
	b.DeviceDirty = false

	return id, nil
}

// Free releases the runtime owned texture bound to b, if any.
func (r *Runtime) Free(b *Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.dev == 0 || b.wrapped {
		return nil
	}
	id, live := b.dev, r.live(b)
	b.dev = 0
	b.DeviceDirty = false

	if !live {
		// Bound in a lost context; the id may now name another texture.
		return nil
	}
	return r.deleteTexture(id)
}

// CopyToDevice makes sure b has a texture holding its latest data.
func (r *Runtime) CopyToDevice(b *Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.copyToDevice(b)
}

func (r *Runtime) copyToDevice(b *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := r.ensureTexture(b); err != nil {
		return err
	}
	if !b.HostDirty {
		return nil
	}
	Logger().Debug("device: copy to device", "id", b.dev, "bytes", b.Width()*b.Height()*Channels)
	if err := r.drv.WriteTexture(b.dev, b.pack()); err != nil {
		return fmt.Errorf("could not copy to device: %w", err)
	}
	b.HostDirty = false

	return nil
}

// CopyToHost copies device data back into host memory when the device copy is newer.
func (r *Runtime) CopyToHost(b *Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !b.DeviceDirty {
		return nil
	}
	if b.Host == nil {
		return ErrNoHost
	}
	if len(b.Host) < b.Len() {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(b.Host), b.Len())
	}
	if !r.live(b) || r.drv == nil {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, b.dev)
	}

	pix := make([]uint8, b.Width()*b.Height()*Channels)
	Logger().Debug("device: copy to host", "id", b.dev, "bytes", len(pix))
	if err := r.drv.ReadTexture(b.dev, pix); err != nil {
		return fmt.Errorf("could not copy to host: %w", err)
	}
	b.unpack(pix)
	b.DeviceDirty = false

	return nil
}

// ensureTexture allocates a runtime owned texture for an unbound buffer. Caller must hold the lock.
func (r *Runtime) ensureTexture(b *Buffer) error {
	if b.dev != 0 {
		if !r.live(b) {
			return fmt.Errorf("%w: %d", ErrUnknownTexture, b.dev)
		}
		return nil
	}
	id, err := r.createTexture(b.Width(), b.Height(), nil, true)
	if err != nil {
		return err
	}
	b.dev = id
	b.gen = r.gen

	return nil
}

// live reports whether the texture bound to b belongs to the current context. Caller must hold the lock.
func (r *Runtime) live(b *Buffer) bool {
	if b.dev == 0 || b.gen != r.gen {
		return false
	}
	_, ok := r.textures[b.dev]
	return ok
}

// Run executes the kernel on the device, staging in when needed and leaving
// the result in the texture bound to out.
func (r *Runtime) Run(k *Kernel, in, out *Buffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.Width() != out.Width() || in.Height() != out.Height() {
		return fmt.Errorf("%w: input %dx%d, output %dx%d",
			ErrSizeMismatch, in.Width(), in.Height(), out.Width(), out.Height())
	}
	if err := r.copyToDevice(in); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := r.ensureTexture(out); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if in.dev == out.dev {
		return ErrAliased
	}

	Logger().Debug("device: dispatch", "kernel", k.Name, "in", in.dev, "out", out.dev)
	if err := r.drv.Dispatch(k, in.dev, out.dev); err != nil {
		return fmt.Errorf("could not run %s: %w", k.Name, err)
	}
	out.HostDirty = false
	out.DeviceDirty = true

	return nil
}

// ContextLost drops every texture and releases the GPU context.
// The next device operation creates a new context through the provider.
func (r *Runtime) ContextLost() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drv == nil {
		return
	}
	Logger().Info("device: context released", "backend", r.drv.Name(), "textures", len(r.textures))
	r.drv.Release()
	r.drv = nil
	r.textures = make(map[TextureID]*texture)
	r.gen++
}
