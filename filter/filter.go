// Package filter contains the prebuilt image pipelines run by the harness.
// Every pipeline has a CPU and a GPU entry point sharing the same buffer
// descriptor calling convention, and both produce byte-identical results.
package filter

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/esimov/quadfilter/device"
)

//go:embed shaders/prelude.wgsl
var prelude string

// Pipeline is an image filter with a host and a device implementation.
type Pipeline interface {
	// Name returns the registry name of the pipeline.
	Name() string

	// CPU runs the filter on the calling goroutine over host memory.
	CPU(in, out *device.Buffer) error

	// GPU runs the filter through the device runtime. The result is left
	// in the texture bound to out; the caller decides whether to copy it back.
	GPU(rt *device.Runtime, in, out *device.Buffer) error
}

// kernelPipeline implements Pipeline over a single kernel.
type kernelPipeline struct {
	kernel device.Kernel
}

func newKernelPipeline(name, source string, host func(in, out *device.Buffer) error) kernelPipeline {
	return kernelPipeline{
		kernel: device.Kernel{
			Name:   name,
			Source: prelude + "\n" + source,
			Host:   host,
		},
	}
}

// Name implements Pipeline.
func (p *kernelPipeline) Name() string { return p.kernel.Name }

// CPU implements Pipeline.
func (p *kernelPipeline) CPU(in, out *device.Buffer) error {
	if in.Host == nil || out.Host == nil {
		return device.ErrNoHost
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if in.Width() != out.Width() || in.Height() != out.Height() {
		return device.ErrSizeMismatch
	}
	return p.kernel.Host(in, out)
}

// GPU implements Pipeline.
func (p *kernelPipeline) GPU(rt *device.Runtime, in, out *device.Buffer) error {
	return rt.Run(&p.kernel, in, out)
}

// Default is the name of the pipeline used when none is requested.
const Default = "blur"

var registry = map[string]func() Pipeline{
	"blur":      func() Pipeline { return NewBlur() },
	"grayscale": func() Pipeline { return NewGrayscale() },
	"sobel":     func() Pipeline { return NewSobel() },
}

// Lookup returns a new pipeline registered under name.
func Lookup(name string) (Pipeline, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter %q, available: %v", name, Names())
	}
	return fn(), nil
}

// Names returns the registered pipeline names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// clamp limits v to [0, max-1].
func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}

// luma returns the integer BT.601 luminance of an 8-bit color.
func luma(r, g, b uint8) int {
	return (299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000
}
