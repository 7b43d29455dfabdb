package device

import "errors"

var (
	// ErrInvalidLayout is returned for buffers that are not 8-bit RGBA with positive extents.
	ErrInvalidLayout = errors.New("device: unsupported buffer layout")

	// ErrBothDirty is returned when host and device copies both claim to be the newest.
	ErrBothDirty = errors.New("device: host and device data are both dirty")

	// ErrNoData is returned for buffers with neither host memory nor a device binding.
	ErrNoData = errors.New("device: buffer has no host memory and no texture")

	// ErrNoHost is returned when copying to a buffer without host memory.
	ErrNoHost = errors.New("device: buffer has no host memory")

	// ErrShortBuffer is returned when host memory is smaller than the layout requires.
	ErrShortBuffer = errors.New("device: host memory too small")

	// ErrSizeMismatch is returned when two buffers or textures disagree on dimensions.
	ErrSizeMismatch = errors.New("device: dimensions do not match")

	// ErrAlreadyBound is returned when wrapping a buffer that is already bound to a texture.
	ErrAlreadyBound = errors.New("device: buffer is already bound to a texture")

	// ErrNotWrapped is returned when detaching a buffer not bound through WrapTexture.
	ErrNotWrapped = errors.New("device: buffer does not wrap a texture")

	// ErrUnknownTexture is returned for texture ids the runtime does not track.
	ErrUnknownTexture = errors.New("device: unknown texture")

	// ErrAliased is returned when input and output resolve to the same texture.
	ErrAliased = errors.New("device: input and output share a texture")

	// ErrNoProvider is returned when a runtime has no context provider.
	ErrNoProvider = errors.New("device: no context provider")

	// ErrUnavailable is returned by providers that cannot create a context on this system.
	ErrUnavailable = errors.New("device: backend unavailable")
)
