// Package hidrecord reads and writes device recordings: one or more
// devices, each with its report descriptor and identity, followed by a
// timestamped stream of report payloads.
//
// The text format is line oriented. `R:` carries the descriptor length
// and hex bytes, `N:` the device name, `I:` bustype/vendor/product,
// `P:` the physical path, `D:` switches the current device in
// multi-device files, and `E: <sec>.<usec> <len> <hex...>` is one
// report. Lines starting with `#` are comments.
package hidrecord

import (
	"time"

	"github.com/bentiss/hid-tools/hiddesc"
)

// Device is one recorded device: identity plus its report descriptor.
type Device struct {
	Name      string
	Phys      string
	Bus       uint16
	VendorID  uint16
	ProductID uint16
	Rdesc     []byte
}

// Descriptor parses the device's report descriptor bytes.
func (d *Device) Descriptor() (*hiddesc.ReportDescriptor, error) {
	return hiddesc.Parse(d.Rdesc)
}

// Event is one report read from a device, timed relative to the first
// event of the recording.
type Event struct {
	Device int
	Time   time.Duration
	Data   []byte
}

// Recording is a parsed recording file. Events keep file order, which is
// also time order across all devices.
type Recording struct {
	Devices []*Device
	Events  []Event
}

func (r *Recording) device(idx int) *Device {
	for len(r.Devices) <= idx {
		r.Devices = append(r.Devices, &Device{})
	}
	return r.Devices[idx]
}
