//go:build !nogpu

package webgpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/esimov/quadfilter/device"
)

// rowAlignment is the required alignment of BytesPerRow in texture to buffer copies.
const rowAlignment = 256

// workgroupSize must match the @workgroup_size of the kernels.
const workgroupSize = 8

const textureUsage = wgpu.TextureUsageTextureBinding |
	wgpu.TextureUsageStorageBinding |
	wgpu.TextureUsageCopySrc |
	wgpu.TextureUsageCopyDst

var errNoSource = errors.New("webgpu: kernel has no shader source")

type texture struct {
	width, height int
	tex           *wgpu.Texture
	view          *wgpu.TextureView
}

func (t *texture) release() {
	t.view.Release()
	t.tex.Release()
}

// Driver runs kernels on a wgpu device.
type Driver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	next      device.TextureID
	textures  map[device.TextureID]*texture
	modules   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
}

var _ device.Driver = (*Driver)(nil)

func newDriver(opts Options) (device.Driver, error) {
	return New(opts)
}

// New requests an adapter and a device. It returns an error wrapping
// device.ErrUnavailable when the system exposes no suitable adapter.
func New(opts Options) (*Driver, error) {
	instance := wgpu.CreateInstance(nil)

	pref := wgpu.PowerPreferenceHighPerformance
	if opts.LowPower {
		pref = wgpu.PowerPreferenceLowPower
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		PowerPreference:      pref,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %v", device.ErrUnavailable, err)
	}

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "quadfilter device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %v", device.ErrUnavailable, err)
	}
	device.Logger().Debug("webgpu: device ready", "fallback", opts.ForceFallbackAdapter, "lowPower", opts.LowPower)

	return &Driver{
		instance:  instance,
		adapter:   adapter,
		device:    dev,
		queue:     dev.GetQueue(),
		textures:  make(map[device.TextureID]*texture),
		modules:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// Name implements device.Driver.
func (d *Driver) Name() string { return Name }

// CreateTexture implements device.Driver.
func (d *Driver) CreateTexture(width, height int) (device.TextureID, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     fmt.Sprintf("texture %d", d.next+1),
		Usage:     textureUsage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("create texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("create texture view: %w", err)
	}

	d.next++
	d.textures[d.next] = &texture{width: width, height: height, tex: tex, view: view}

	return d.next, nil
}

func (d *Driver) lookup(id device.TextureID) (*texture, error) {
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrUnknownTexture, id)
	}
	return t, nil
}

// WriteTexture implements device.Driver.
func (d *Driver) WriteTexture(id device.TextureID, pix []uint8) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	n := t.width * t.height * device.Channels
	if len(pix) < n {
		return fmt.Errorf("%w: have %d bytes, need %d", device.ErrShortBuffer, len(pix), n)
	}

	err = d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pix[:n],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.width * device.Channels),
			RowsPerImage: uint32(t.height),
		},
		&wgpu.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("write texture: %w", err)
	}
	return nil
}

// ReadTexture implements device.Driver. Rows are copied through a staging
// buffer padded to rowAlignment and unpadded into dst.
func (d *Driver) ReadTexture(id device.TextureID, dst []uint8) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	rowSize := t.width * device.Channels
	if len(dst) < rowSize*t.height {
		return fmt.Errorf("%w: have %d bytes, need %d", device.ErrShortBuffer, len(dst), rowSize*t.height)
	}
	paddedRow := (rowSize + rowAlignment - 1) / rowAlignment * rowAlignment
	size := uint64(paddedRow * t.height)

	staging, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(paddedRow),
				RowsPerImage: uint32(t.height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("copy texture to buffer: %w", err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	defer cmd.Release()
	d.queue.Submit(cmd)

	// The callback only fires when MapAsync accepted the request.
	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("map failed: %v", status)
			return
		}
		done <- nil
	})
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	d.device.Poll(true, nil)
	if err := <-done; err != nil {
		return err
	}

	data := staging.GetMappedRange(0, uint(size))
	for y := 0; y < t.height; y++ {
		copy(dst[y*rowSize:(y+1)*rowSize], data[y*paddedRow:y*paddedRow+rowSize])
	}
	if err := staging.Unmap(); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// DeleteTexture implements device.Driver.
func (d *Driver) DeleteTexture(id device.TextureID) error {
	t, err := d.lookup(id)
	if err != nil {
		return err
	}
	t.release()
	delete(d.textures, id)

	return nil
}

// pipeline returns the compute pipeline of k, compiling it on first use.
func (d *Driver) pipeline(k *device.Kernel) (*wgpu.ComputePipeline, error) {
	if p, ok := d.pipelines[k.Name]; ok {
		return p, nil
	}
	if k.Source == "" {
		return nil, errNoSource
	}

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          k.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: k.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("shader module: %w", err)
	}
	p, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: k.Name,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		module.Release()
		return nil, fmt.Errorf("compute pipeline: %w", err)
	}
	device.Logger().Debug("webgpu: pipeline compiled", "kernel", k.Name)

	d.modules[k.Name] = module
	d.pipelines[k.Name] = p

	return p, nil
}

// Dispatch implements device.Driver. It blocks until the queue is idle.
func (d *Driver) Dispatch(k *device.Kernel, in, out device.TextureID) error {
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
	p, err := d.pipeline(k)
	if err != nil {
		return err
	}

	layout := p.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: src.view},
			{Binding: 1, TextureView: dst.view},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(
		uint32((dst.width+workgroupSize-1)/workgroupSize),
		uint32((dst.height+workgroupSize-1)/workgroupSize),
		1,
	)
	err = pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("compute pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	defer cmd.Release()
	d.queue.Submit(cmd)
	d.device.Poll(true, nil)

	return nil
}

// Release implements device.Driver.
func (d *Driver) Release() {
	if d.device == nil {
		return
	}
	for id, t := range d.textures {
		t.release()
		delete(d.textures, id)
	}
	for name, p := range d.pipelines {
		p.Release()
		delete(d.pipelines, name)
	}
	for name, m := range d.modules {
		m.Release()
		delete(d.modules, name)
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	d.queue, d.device, d.adapter, d.instance = nil, nil, nil, nil
}
