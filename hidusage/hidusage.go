// Package hidusage maps numeric HID usages to human-readable names.
//
// The tables cover the usage pages the kernel tooling cares about. Everything
// else falls back to a hexadecimal rendering so unknown vendor usages still
// produce stable, parseable output.
package hidusage

import "fmt"

// Well-known usage page identifiers.
const (
	GenericDesktop  uint16 = 0x01
	SimulationCtrls uint16 = 0x02
	VRControls      uint16 = 0x03
	SportControls   uint16 = 0x04
	GameControls    uint16 = 0x05
	GenericDevice   uint16 = 0x06
	KeyboardKeypad  uint16 = 0x07
	LEDs            uint16 = 0x08
	Button          uint16 = 0x09
	Ordinal         uint16 = 0x0a
	Telephony       uint16 = 0x0b
	Consumer        uint16 = 0x0c
	Digitizers      uint16 = 0x0d
	PhysicalInput   uint16 = 0x0f
	Unicode         uint16 = 0x10
	Sensor          uint16 = 0x20
	MedicalInstr    uint16 = 0x40
	CameraControl   uint16 = 0x90
)

// Resolver maps usage pages and usages to names. Implementations return an
// empty string for usages they do not know.
type Resolver interface {
	PageName(page uint16) string
	UsageName(page, id uint16) string
}

// NewResolver returns a Resolver backed by the built-in tables.
func NewResolver() Resolver {
	return tableResolver{}
}

type tableResolver struct{}

func (tableResolver) PageName(page uint16) string {
	return pageNames[page]
}

func (tableResolver) UsageName(page, id uint16) string {
	if page == Button {
		// The usage table lists buttons generically, one entry per code.
		if id == 0 {
			return "No Button"
		}
		return fmt.Sprintf("Button%d", id)
	}
	if usages, ok := usageNames[page]; ok {
		return usages[id]
	}
	return ""
}

// FormatPage renders a page name, falling back to hex for unknown and
// vendor-defined pages.
func FormatPage(res Resolver, page uint16) string {
	if name := res.PageName(page); name != "" {
		return name
	}
	if page >= 0xff00 {
		return fmt.Sprintf("Vendor Defined Page 0x%04x", page)
	}
	return fmt.Sprintf("0x%04x", page)
}

// FormatUsage renders a usage name, falling back to hex for unknown usages.
func FormatUsage(res Resolver, page, id uint16) string {
	if name := res.UsageName(page, id); name != "" {
		return name
	}
	if page >= 0xff00 {
		return fmt.Sprintf("Vendor Usage 0x%02x", id)
	}
	return fmt.Sprintf("0x%04x", id)
}
