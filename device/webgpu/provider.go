// Package webgpu implements a device driver on top of wgpu-native.
//
// Textures are RGBA8Unorm, kernels are WGSL compute shaders compiled once per
// kernel name. Building with the nogpu tag replaces the driver with a stub
// whose provider reports device.ErrUnavailable.
package webgpu

import "github.com/esimov/quadfilter/device"

// Name is the backend name reported by the driver.
const Name = "wgpu"

// Options configures adapter selection.
type Options struct {
	// ForceFallbackAdapter selects the software adapter of the platform, if any.
	ForceFallbackAdapter bool

	// LowPower prefers an integrated GPU over a discrete one.
	LowPower bool
}

// NewProvider returns a context provider creating a wgpu driver with the given options.
func NewProvider(opts Options) device.ContextProvider {
	return device.ContextProviderFunc(func() (device.Driver, error) {
		return newDriver(opts)
	})
}
