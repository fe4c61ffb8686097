package hidrecord

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mouseRdesc = []byte{
	0x05, 0x01, 0x09, 0x02, 0xa1, 0x01, 0x09, 0x01, 0xa1, 0x00,
	0x05, 0x09, 0x19, 0x01, 0x29, 0x03, 0x15, 0x00, 0x25, 0x01,
	0x95, 0x03, 0x75, 0x01, 0x81, 0x02, 0x95, 0x01, 0x75, 0x05,
	0x81, 0x03, 0x05, 0x01, 0x09, 0x30, 0x09, 0x31, 0x15, 0x81,
	0x25, 0x7f, 0x75, 0x08, 0x95, 0x02, 0x81, 0x06, 0xc0, 0xc0,
}

const mouseRecording = `# test mouse
# some annotated dump line the parser must skip
R: 50 05 01 09 02 a1 01 09 01 a1 00 05 09 19 01 29 03 15 00 25 01 95 03 75 01 81 02 95 01 75 05 81 03 05 01 09 30 09 31 15 81 25 7f 75 08 95 02 81 06 c0 c0
N: test mouse
P: usb-0000:00:14.0-3/input0
I: 3 046d c52b
E: 000000.000000 3 00 00 00
# Button1: 1 / Button2: 0 / Button3: 0
E: 000001.500000 3 01 05 fb
`

func TestParseRecording(t *testing.T) {
	rec, err := Parse(strings.NewReader(mouseRecording))
	require.NoError(t, err)

	require.Len(t, rec.Devices, 1)
	dev := rec.Devices[0]
	assert.Equal(t, "test mouse", dev.Name)
	assert.Equal(t, "usb-0000:00:14.0-3/input0", dev.Phys)
	assert.Equal(t, uint16(0x3), dev.Bus)
	assert.Equal(t, uint16(0x046d), dev.VendorID)
	assert.Equal(t, uint16(0xc52b), dev.ProductID)
	assert.Equal(t, mouseRdesc, dev.Rdesc)

	_, err = dev.Descriptor()
	require.NoError(t, err)

	require.Len(t, rec.Events, 2)
	assert.Equal(t, time.Duration(0), rec.Events[0].Time)
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, rec.Events[0].Data)
	assert.Equal(t, 1500*time.Millisecond, rec.Events[1].Time)
	assert.Equal(t, []byte{0x01, 0x05, 0xfb}, rec.Events[1].Data)
}

func TestParseMultiDevice(t *testing.T) {
	input := `D: 0
R: 2 c0 c0
N: first
I: 3 0001 0002
D: 1
R: 2 c0 c0
N: second
I: 5 0003 0004
D: 0
E: 000000.000000 1 01
D: 1
E: 000000.100000 1 02
E: 000000.200000 1 03
`
	rec, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rec.Devices, 2)
	assert.Equal(t, "first", rec.Devices[0].Name)
	assert.Equal(t, "second", rec.Devices[1].Name)
	assert.Equal(t, uint16(5), rec.Devices[1].Bus)

	require.Len(t, rec.Events, 3)
	assert.Equal(t, 0, rec.Events[0].Device)
	assert.Equal(t, 1, rec.Events[1].Device)
	assert.Equal(t, 1, rec.Events[2].Device)
}

func TestParseErrors(t *testing.T) {
	for name, input := range map[string]string{
		"count mismatch": "R: 3 c0 c0\n",
		"unknown prefix": "X: what\n",
		"bad hex":        "R: 1 zz\n",
		"bad timestamp":  "R: 1 c0\nE: nope 1 00\n",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrBadRecording)
		})
	}
}

func TestDescriptorBytes(t *testing.T) {
	t.Run("binary passthrough", func(t *testing.T) {
		data, err := DescriptorBytes(mouseRdesc)
		require.NoError(t, err)
		assert.Equal(t, mouseRdesc, data)
	})

	t.Run("plain hex pairs", func(t *testing.T) {
		data, err := DescriptorBytes([]byte("05 01 09 02 a1 01 c0"))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x05, 0x01, 0x09, 0x02, 0xa1, 0x01, 0xc0}, data)
	})

	t.Run("recording line", func(t *testing.T) {
		data, err := DescriptorBytes([]byte("R: 4 05 01 09 02"))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x05, 0x01, 0x09, 0x02}, data)
	})

	t.Run("annotated dump", func(t *testing.T) {
		input := "# comment line\n" +
			"0x05, 0x01,                     // Usage Page (Generic Desktop)            0\n" +
			"0x09, 0x02,                     // Usage (Mouse)                           2\n"
		data, err := DescriptorBytes([]byte(input))
		require.NoError(t, err)
		assert.Equal(t, []byte{0x05, 0x01, 0x09, 0x02}, data)
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := DescriptorBytes([]byte("R: 9 05 01"))
		assert.ErrorIs(t, err, ErrBadRecording)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DescriptorBytes([]byte("# nothing but comments\n"))
		assert.ErrorIs(t, err, ErrBadRecording)
	})
}

func TestWriterRoundTrip(t *testing.T) {
	dev := &Device{
		Name:      "test mouse",
		Phys:      "usb-1/input0",
		Bus:       0x3,
		VendorID:  0x046d,
		ProductID: 0xc52b,
		Rdesc:     mouseRdesc,
	}

	var out strings.Builder
	wr := NewWriter(&out, nil)
	idx, err := wr.WriteDevice(dev)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	require.NoError(t, wr.WriteEvent(0, 0, []byte{0x00, 0x00, 0x00}))
	require.NoError(t, wr.WriteEvent(0, 1500*time.Millisecond, []byte{0x01, 0x05, 0xfb}))

	text := out.String()
	assert.Contains(t, text, "# test mouse\n")
	assert.Contains(t, text, "N: test mouse\n")
	assert.Contains(t, text, "P: usb-1/input0\n")
	assert.Contains(t, text, "I: 3 046d c52b\n")
	assert.Contains(t, text, "E: 000001.500000 3 01 05 fb\n")
	assert.Contains(t, text, "# Button1: 1 / Button2: 0 / Button3: 0\n")

	rec, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rec.Devices, 1)
	assert.Equal(t, dev, rec.Devices[0])
	require.Len(t, rec.Events, 2)
	assert.Equal(t, []byte{0x01, 0x05, 0xfb}, rec.Events[1].Data)
	assert.Equal(t, 1500*time.Millisecond, rec.Events[1].Time)
}

func TestWriterMultiDevice(t *testing.T) {
	devs := []*Device{
		{Name: "one", Bus: 3, VendorID: 1, ProductID: 2, Rdesc: mouseRdesc},
		{Name: "two", Bus: 3, VendorID: 3, ProductID: 4, Rdesc: mouseRdesc},
	}

	var out strings.Builder
	wr := NewWriter(&out, nil)
	require.NoError(t, wr.WriteDevices(devs))

	require.NoError(t, wr.WriteEvent(0, 0, []byte{0x00, 0x00, 0x00}))
	require.NoError(t, wr.WriteEvent(1, 100*time.Millisecond, []byte{0x01, 0x00, 0x00}))
	require.NoError(t, wr.WriteEvent(1, 200*time.Millisecond, []byte{0x00, 0x00, 0x00}))

	rec, err := Parse(strings.NewReader(out.String()))
	require.NoError(t, err)
	require.Len(t, rec.Devices, 2)
	assert.Equal(t, "two", rec.Devices[1].Name)

	require.Len(t, rec.Events, 3)
	assert.Equal(t, []int{0, 1, 1}, []int{
		rec.Events[0].Device, rec.Events[1].Device, rec.Events[2].Device,
	})
}

func TestWriterUnknownDevice(t *testing.T) {
	var out strings.Builder
	wr := NewWriter(&out, nil)
	assert.Error(t, wr.WriteEvent(0, 0, []byte{0x00}))
}

func TestWriterBadDescriptor(t *testing.T) {
	var out strings.Builder
	wr := NewWriter(&out, nil)
	// Report ID prefix declares a 1-byte payload, descriptor ends first.
	_, err := wr.WriteDevice(&Device{Name: "broken", Rdesc: []byte{0x85}})
	assert.Error(t, err)
}
