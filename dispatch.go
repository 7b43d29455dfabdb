package quadfilter

import (
	"errors"
	"fmt"

	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/filter"
)

// checkHost verifies that a host buffer can hold a width x height RGBA8 image.
func checkHost(role string, pix []uint8, width, height int) error {
	if need := width * height * device.Channels; len(pix) < need {
		return fmt.Errorf("%s: %w: have %d bytes, need %d", role, device.ErrShortBuffer, len(pix), need)
	}
	return nil
}

// RunCPUFilter runs the pipeline on the calling goroutine, reading src and
// writing dst. No device is involved. It returns the timing report.
func RunCPUFilter(p filter.Pipeline, src, dst []uint8, width, height int) (string, error) {
	if err := checkHost("input", src, width, height); err != nil {
		return "", err
	}
	if err := checkHost("output", dst, width, height); err != nil {
		return "", err
	}
	timer := StartTimer(LabelCPU)

	in := device.NewBuffer(width, height)
	in.Host = src

	out := device.NewBuffer(width, height)
	out.Host = dst

	if err := p.CPU(&in, &out); err != nil {
		return "", fmt.Errorf("%s filter on the CPU: %w", p.Name(), err)
	}
	report := timer.Report()
	Logger().Debug("dispatch: done", "path", LabelCPU, "filter", p.Name(), "elapsed", timer.Elapsed())

	return report, nil
}

// RunGPUFilterHostToHost runs the pipeline on the device with data starting
// from and ending up in host memory. The runtime allocates the textures,
// stages src to the device and the result is copied back into dst before
// returning. It returns the timing report.
func RunGPUFilterHostToHost(rt *device.Runtime, p filter.Pipeline, src, dst []uint8, width, height int) (report string, err error) {
	if err := checkHost("input", src, width, height); err != nil {
		return "", err
	}
	if err := checkHost("output", dst, width, height); err != nil {
		return "", err
	}
	timer := StartTimer(LabelHostToHost)

	// Mark the host memory as dirty so the runtime knows it has to be
	// transferred to the texture it allocates for the input.
	in := device.NewBuffer(width, height)
	in.Host = src
	in.HostDirty = true

	out := device.NewBuffer(width, height)
	out.Host = dst

	defer func() {
		err = errors.Join(err, rt.Free(&in), rt.Free(&out))
		if err != nil {
			report = ""
		}
	}()

	if err := p.GPU(rt, &in, &out); err != nil {
		return "", fmt.Errorf("%s filter on the device: %w", p.Name(), err)
	}
	if err := rt.CopyToHost(&out); err != nil {
		return "", err
	}
	report = timer.Report()
	Logger().Debug("dispatch: done", "path", LabelHostToHost, "filter", p.Name(), "elapsed", timer.Elapsed())

	return report, nil
}

// RunGPUFilterTextureToTexture runs the pipeline on the device reading the
// input texture and writing the output texture. Nothing is allocated on the
// host and the textures stay owned by the caller. It returns the timing report.
func RunGPUFilterTextureToTexture(rt *device.Runtime, p filter.Pipeline, inTex, outTex device.TextureID, width, height int) (report string, err error) {
	timer := StartTimer(LabelTextureToTexture)

	in := device.NewBuffer(width, height)
	if err := rt.WrapTexture(&in, inTex); err != nil {
		return "", fmt.Errorf("input: %w", err)
	}
	defer func() {
		if _, derr := rt.DetachTexture(&in); derr != nil {
			err = errors.Join(err, derr)
			report = ""
		}
	}()

	out := device.NewBuffer(width, height)
	if err := rt.WrapTexture(&out, outTex); err != nil {
		return "", fmt.Errorf("output: %w", err)
	}
	defer func() {
		if _, derr := rt.DetachTexture(&out); derr != nil {
			err = errors.Join(err, derr)
			report = ""
		}
	}()

	if err := p.GPU(rt, &in, &out); err != nil {
		return "", fmt.Errorf("%s filter on the device: %w", p.Name(), err)
	}
	report = timer.Report()
	Logger().Debug("dispatch: done", "path", LabelTextureToTexture, "filter", p.Name(), "elapsed", timer.Elapsed())

	return report, nil
}
