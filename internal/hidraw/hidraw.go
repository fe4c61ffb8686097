// Package hidraw talks to /dev/hidraw character devices: descriptor and
// identity queries, input report reads and feature report transfers.
package hidraw

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl numbers from linux/hidraw.h.
const (
	iocWrite = 1
	iocRead  = 2

	hidIoctlType = 'H'

	nrGRDescSize = 0x01
	nrGRDesc     = 0x02
	nrGRawInfo   = 0x03
	nrGRawName   = 0x04
	nrGRawPhys   = 0x05
	nrSFeature   = 0x06
	nrGFeature   = 0x07

	maxDescriptorSize = 4096
	maxStringSize     = 256
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | hidIoctlType<<8 | nr
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) (int, error) {
	r1, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}

// DevInfo mirrors struct hidraw_devinfo.
type DevInfo struct {
	Bus     uint32
	Vendor  int16
	Product int16
}

// Device is an open hidraw node. Identity and descriptor are read once
// at open time; Read streams input reports.
type Device struct {
	f     *os.File
	name  string
	phys  string
	info  DevInfo
	rdesc []byte
}

// Open opens a hidraw node and queries its descriptor, name, physical
// path and device info.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d := &Device{f: f}
	if err := d.init(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Device) init() error {
	fd := int(d.f.Fd())

	var size int32
	if _, err := ioctl(fd, ioc(iocRead, nrGRDescSize, 4), unsafe.Pointer(&size)); err != nil {
		return fmt.Errorf("descriptor size: %w", err)
	}
	if size < 0 || size > maxDescriptorSize {
		return fmt.Errorf("descriptor size %d out of range", size)
	}

	var desc struct {
		size  uint32
		value [maxDescriptorSize]byte
	}
	desc.size = uint32(size)
	if _, err := ioctl(fd, ioc(iocRead, nrGRDesc, unsafe.Sizeof(desc)), unsafe.Pointer(&desc)); err != nil {
		return fmt.Errorf("descriptor: %w", err)
	}
	d.rdesc = append([]byte(nil), desc.value[:size]...)

	if _, err := ioctl(fd, ioc(iocRead, nrGRawInfo, unsafe.Sizeof(d.info)), unsafe.Pointer(&d.info)); err != nil {
		return fmt.Errorf("device info: %w", err)
	}

	var err error
	if d.name, err = d.getString(nrGRawName); err != nil {
		return fmt.Errorf("device name: %w", err)
	}
	// Virtual devices may have no phys.
	d.phys, _ = d.getString(nrGRawPhys)
	return nil
}

func (d *Device) getString(nr uintptr) (string, error) {
	buf := make([]byte, maxStringSize)
	if _, err := ioctl(int(d.f.Fd()), ioc(iocRead, nr, uintptr(len(buf))), unsafe.Pointer(&buf[0])); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf, "\x00")), nil
}

func (d *Device) Name() string  { return d.name }
func (d *Device) Phys() string  { return d.phys }
func (d *Device) Info() DevInfo { return d.info }
func (d *Device) Rdesc() []byte { return d.rdesc }
func (d *Device) Path() string  { return d.f.Name() }
func (d *Device) Fd() int       { return int(d.f.Fd()) }

// Read blocks until one input report is available.
func (d *Device) Read(buf []byte) (int, error) {
	return d.f.Read(buf)
}

func (d *Device) Close() error {
	return d.f.Close()
}

// GetFeature fetches the feature report with the given ID. length is the
// full report size including the leading ID byte for numbered reports.
// The returned slice keeps the ID byte, matching what the kernel hands
// back.
func (d *Device) GetFeature(reportID uint8, length int) ([]byte, error) {
	buf := make([]byte, length)
	buf[0] = reportID
	n, err := ioctl(int(d.f.Fd()), ioc(iocRead|iocWrite, nrGFeature, uintptr(length)), unsafe.Pointer(&buf[0]))
	if err != nil {
		return nil, fmt.Errorf("get feature %d: %w", reportID, err)
	}
	if n > length {
		n = length
	}
	return buf[:n], nil
}

// SetFeature sends a feature report. data[0] must hold the report ID, or
// 0 for unnumbered reports.
func (d *Device) SetFeature(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("set feature: empty report")
	}
	if _, err := ioctl(int(d.f.Fd()), ioc(iocRead|iocWrite, nrSFeature, uintptr(len(data))), unsafe.Pointer(&data[0])); err != nil {
		return fmt.Errorf("set feature %d: %w", data[0], err)
	}
	return nil
}

// ListDevices returns the hidraw node paths present on the system, in
// node-number order.
func ListDevices() ([]string, error) {
	paths, err := filepath.Glob("/dev/hidraw*")
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return nodeNumber(paths[i]) < nodeNumber(paths[j])
	})
	return paths, nil
}

func nodeNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "hidraw"))
	if err != nil {
		return -1
	}
	return n
}
