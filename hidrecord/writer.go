package hidrecord

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bentiss/hid-tools/hiddesc"
	"github.com/bentiss/hid-tools/hidreport"
	"github.com/bentiss/hid-tools/hidusage"
)

// Writer emits a recording in the text format Parse reads back. Device
// blocks come first; events follow in time order. A "D: <n>" line is
// emitted whenever the active device changes, and for every device
// block when the recording has more than one device.
type Writer struct {
	w      io.Writer
	res    hidusage.Resolver
	codecs []*hidreport.Codec
	multi  bool
	last   int
}

func NewWriter(w io.Writer, res hidusage.Resolver) *Writer {
	if res == nil {
		res = hidusage.NewResolver()
	}
	return &Writer{w: w, res: res, last: 0}
}

// WriteDevices emits the header blocks for all recorded devices. Call it
// once, before any event; device indices for WriteEvent follow the slice
// order. With more than one device each block is preceded by its D: line.
func (wr *Writer) WriteDevices(devs []*Device) error {
	wr.multi = len(devs) > 1
	for _, dev := range devs {
		if _, err := wr.writeDevice(dev); err != nil {
			return err
		}
	}
	return nil
}

// WriteDevice emits a single device header block and returns the index
// to use for its events. Single-device recordings can call this instead
// of WriteDevices.
func (wr *Writer) WriteDevice(dev *Device) (int, error) {
	return wr.writeDevice(dev)
}

// writeDevice dumps the descriptor in annotated form as comments so the
// file is readable without tooling, then the machine-readable block.
func (wr *Writer) writeDevice(dev *Device) (int, error) {
	idx := len(wr.codecs)
	desc, err := dev.Descriptor()
	if err != nil {
		return 0, fmt.Errorf("device %d descriptor: %w", idx, err)
	}
	wr.codecs = append(wr.codecs, hidreport.NewCodec(desc, wr.res))

	if wr.multi {
		if err := wr.switchDevice(idx); err != nil {
			return 0, err
		}
	}
	if _, err := fmt.Fprintf(wr.w, "# %s\n", dev.Name); err != nil {
		return 0, err
	}
	lines, err := hiddesc.NewDumper(wr.res).Lines(desc)
	if err != nil {
		return 0, fmt.Errorf("device %d descriptor: %w", idx, err)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(wr.w, "# %s\n", line); err != nil {
			return 0, err
		}
	}
	hex := make([]string, len(dev.Rdesc))
	for i, b := range dev.Rdesc {
		hex[i] = fmt.Sprintf("%02x", b)
	}
	if _, err := fmt.Fprintf(wr.w, "R: %d %s\n", len(dev.Rdesc), strings.Join(hex, " ")); err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(wr.w, "N: %s\n", dev.Name); err != nil {
		return 0, err
	}
	if dev.Phys != "" {
		if _, err := fmt.Fprintf(wr.w, "P: %s\n", dev.Phys); err != nil {
			return 0, err
		}
	}
	if _, err := fmt.Fprintf(wr.w, "I: %x %04x %04x\n", dev.Bus, dev.VendorID, dev.ProductID); err != nil {
		return 0, err
	}
	wr.last = idx
	return idx, nil
}

func (wr *Writer) switchDevice(idx int) error {
	_, err := fmt.Fprintf(wr.w, "D: %d\n", idx)
	wr.last = idx
	return err
}

// WriteEvent emits one input report for device idx, preceded by its
// decoded form as a comment. Undecodable payloads get no comment but are
// still written.
func (wr *Writer) WriteEvent(idx int, t time.Duration, data []byte) error {
	if idx < 0 || idx >= len(wr.codecs) {
		return fmt.Errorf("device %d not registered", idx)
	}
	if wr.multi && idx != wr.last {
		if err := wr.switchDevice(idx); err != nil {
			return err
		}
	}
	if lines, err := wr.codecs[idx].Format(hiddesc.ReportTypeInput, data); err == nil && len(lines) > 0 {
		if err := wr.writeComment(lines); err != nil {
			return err
		}
	}
	hex := make([]string, len(data))
	for i, b := range data {
		hex[i] = fmt.Sprintf("%02x", b)
	}
	sec := int64(t / time.Second)
	usec := int64(t%time.Second) / int64(time.Microsecond)
	_, err := fmt.Fprintf(wr.w, "E: %06d.%06d %d %s\n", sec, usec, len(data), strings.Join(hex, " "))
	return err
}

// writeComment prints decoded report lines, continuation lines indented
// so they line up under the first "/" of the first line.
func (wr *Writer) writeComment(lines []string) error {
	indent := 2
	if slash := strings.Index(lines[0], "/"); slash >= 0 {
		indent = slash + 1
	}
	if _, err := fmt.Fprintf(wr.w, "# %s\n", lines[0]); err != nil {
		return err
	}
	for _, line := range lines[1:] {
		if _, err := fmt.Fprintf(wr.w, "#%s%s\n", strings.Repeat(" ", indent), line); err != nil {
			return err
		}
	}
	return nil
}
