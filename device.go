package md2watch

import (
	"fmt"
	"slices"
)

// Device keys of the built-in catalog.
const (
	DeviceSE40     = "se_40mm"
	DeviceSE44     = "se_44mm"
	DeviceSeries41 = "series_41mm"
	DeviceSeries45 = "series_45mm"
	DeviceUltra2   = "ultra_2"
)

// DefaultDeviceKey is used when no device has been chosen.
const DefaultDeviceKey = DeviceSeries45

// DeviceProfile describes a target display. Profiles are values;
// every request gets its own copy.
type DeviceProfile struct {
	Key    string
	Name   string
	Width  int // pixels
	Height int // pixels
	DPI    int
}

// Validate checks that the profile dimensions are usable.
func (d DeviceProfile) Validate() error {
	if d.Width <= 0 || d.Height <= 0 || d.DPI <= 0 {
		return fmt.Errorf("%w: %q has non-positive geometry %dx%d@%d", ErrUnknownDevice, d.Key, d.Width, d.Height, d.DPI)
	}
	return nil
}

// String returns "Name (WxH)".
func (d DeviceProfile) String() string {
	return fmt.Sprintf("%s (%dx%d)", d.Name, d.Width, d.Height)
}

var catalog = []DeviceProfile{
	{Key: DeviceSE40, Name: "SE 40mm", Width: 324, Height: 394, DPI: 326},
	{Key: DeviceSE44, Name: "SE 44mm", Width: 368, Height: 448, DPI: 326},
	{Key: DeviceSeries41, Name: "Series 8/9 41mm", Width: 325, Height: 430, DPI: 326},
	{Key: DeviceSeries45, Name: "Series 8/9 45mm", Width: 396, Height: 484, DPI: 326},
	{Key: DeviceUltra2, Name: "Ultra 2", Width: 502, Height: 410, DPI: 338},
}

// Devices returns a copy of the device catalog in display order.
func Devices() []DeviceProfile {
	return slices.Clone(catalog)
}

// LookupDevice returns the profile registered under key.
func LookupDevice(key string) (DeviceProfile, error) {
	for _, d := range catalog {
		if d.Key == key {
			return d, nil
		}
	}
	return DeviceProfile{}, fmt.Errorf("%w: %q", ErrUnknownDevice, key)
}

// DefaultDevice returns the profile used when no device has been chosen.
func DefaultDevice() DeviceProfile {
	d, _ := LookupDevice(DefaultDeviceKey)
	return d
}

// DeviceKeys lists the catalog keys in display order.
func DeviceKeys() []string {
	keys := make([]string, len(catalog))
	for i, d := range catalog {
		keys[i] = d.Key
	}
	return keys
}

// minDeviceHeight is the smallest page height in the catalog.
// Overlaps must stay below it for every device to paginate.
func minDeviceHeight() int {
	h := catalog[0].Height
	for _, d := range catalog[1:] {
		h = min(h, d.Height)
	}
	return h
}

// MaxOverlap is the largest overlap every catalog device can paginate with.
func MaxOverlap() int {
	return minDeviceHeight() - 1
}
