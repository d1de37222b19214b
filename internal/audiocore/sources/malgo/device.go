package malgo

import (
	"encoding/hex"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/oliviamiller/audiostream/internal/errors"
)

// DeviceInfo describes an available capture device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// ListCaptureDevices enumerates the capture devices visible to the platform
// backend.
func ListCaptureDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext([]malgo.Backend{platformBackend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("operation", "init_context").
			Build()
	}
	defer func() { _ = ctx.Uninit() }()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("operation", "enumerate_devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      infos[i].Name(),
			ID:        decodeDeviceID(infos[i].ID.String()),
			IsDefault: infos[i].IsDefault == 1,
		})
	}
	return devices, nil
}

// selectDevice resolves the configured device selector against the backend's
// capture devices. An empty or "default" selector picks the system default,
// falling back to the first device when the backend marks none as default.
func selectDevice(ctx *malgo.AllocatedContext, selector string) (*malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).
			Component("capture").
			Category(errors.CategoryAudio).
			Context("operation", "enumerate_devices").
			Build()
	}
	if len(infos) == 0 {
		return nil, errors.Newf("no capture devices available").
			Component("capture").
			Category(errors.CategoryAudioSource).
			Build()
	}

	if selector == "" || selector == "default" {
		for i := range infos {
			if infos[i].IsDefault == 1 {
				return &infos[i], nil
			}
		}
		return &infos[0], nil
	}

	for i := range infos {
		decodedID := decodeDeviceID(infos[i].ID.String())
		if decodedID == selector || strings.Contains(infos[i].Name(), selector) {
			return &infos[i], nil
		}
	}

	return nil, errors.Newf("no capture device matches %q", selector).
		Component("capture").
		Category(errors.CategoryNotFound).
		Context("selector", selector).
		Build()
}

// decodeDeviceID turns malgo's hex-encoded device ID into the backend's
// native identifier (an ALSA hw string on Linux). Non-hex IDs pass through
// unchanged.
func decodeDeviceID(hexStr string) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return hexStr
	}
	return strings.TrimRight(string(raw), "\x00")
}
