//go:build nogpu

package webgpu

import "github.com/esimov/quadfilter/device"

func newDriver(Options) (device.Driver, error) {
	return nil, device.ErrUnavailable
}
