package hiddesc

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 16 buttons, relative X/Y/Wheel.
var mouseDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x02, // Usage (Mouse)
	0xa1, 0x01, // Collection (Application)
	0x09, 0x01, //   Usage (Pointer)
	0xa1, 0x00, //   Collection (Physical)
	0x05, 0x09, //     Usage Page (Button)
	0x19, 0x01, //     Usage Minimum (1)
	0x29, 0x10, //     Usage Maximum (16)
	0x15, 0x00, //     Logical Minimum (0)
	0x25, 0x01, //     Logical Maximum (1)
	0x95, 0x10, //     Report Count (16)
	0x75, 0x01, //     Report Size (1)
	0x81, 0x02, //     Input (Data,Var,Abs)
	0x05, 0x01, //     Usage Page (Generic Desktop)
	0x09, 0x30, //     Usage (X)
	0x09, 0x31, //     Usage (Y)
	0x09, 0x38, //     Usage (Wheel)
	0x15, 0x81, //     Logical Minimum (-127)
	0x25, 0x7f, //     Logical Maximum (127)
	0x75, 0x08, //     Report Size (8)
	0x95, 0x03, //     Report Count (3)
	0x81, 0x06, //     Input (Data,Var,Rel)
	0xc0, //   End Collection
	0xc0, // End Collection
}

func TestParseMouse(t *testing.T) {
	desc, err := Parse(mouseDescriptor)
	require.NoError(t, err)

	collections := desc.Collections()
	require.Len(t, collections, 1)
	app := collections[0]
	assert.Equal(t, CollectionTypeApplication, app.Type)
	assert.Equal(t, NewUsage(0x01, 0x02), app.Usage)

	require.Len(t, app.Items, 1)
	physical := app.Items[0].Collection
	require.NotNil(t, physical)
	assert.Equal(t, CollectionTypePhysical, physical.Type)
	assert.Equal(t, NewUsage(0x01, 0x01), physical.Usage)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	assert.False(t, report.Numbered())
	require.Len(t, report.Fields, 2)

	buttons := report.Fields[0]
	assert.Equal(t, uint32(1), buttons.ReportSize)
	assert.Equal(t, uint32(16), buttons.ReportCount)
	assert.Equal(t, 0, buttons.BitOffset)
	assert.False(t, buttons.IsSigned())
	require.Len(t, buttons.Usages, 16)
	assert.Equal(t, NewUsage(0x09, 0x01), buttons.Usages[0])
	assert.Equal(t, NewUsage(0x09, 0x10), buttons.Usages[15])
	assert.Equal(t, NewUsage(0x01, 0x02), buttons.Application)

	motion := report.Fields[1]
	assert.Equal(t, 16, motion.BitOffset)
	assert.True(t, motion.IsSigned())
	assert.True(t, motion.Flags.IsRelative())
	assert.Equal(t, int32(-127), motion.LogicalMinimum)
	assert.Equal(t, []Usage{
		NewUsage(0x01, 0x30),
		NewUsage(0x01, 0x31),
		NewUsage(0x01, 0x38),
	}, motion.Usages)

	assert.Equal(t, 40, report.BitSize())
	assert.Equal(t, 5, report.ByteSize())
}

// The (bit offset, bit size) intervals of a report's fields must tile the
// report without gaps or overlaps.
func TestFieldGeometryPartition(t *testing.T) {
	desc, err := Parse(mouseDescriptor)
	require.NoError(t, err)

	for _, typ := range []ReportType{ReportTypeInput, ReportTypeOutput, ReportTypeFeature} {
		for _, report := range desc.Reports(typ) {
			next := 0
			if report.Numbered() {
				next = 8
			}
			for _, field := range report.Fields {
				assert.Equal(t, next, field.BitOffset)
				next += field.BitSize()
			}
			assert.Equal(t, report.BitSize(), next)
		}
	}
}

func TestParseReportID(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x06, // Usage (Keyboard)
		0xa1, 0x01, // Collection (Application)
		0x85, 0x01, //   Report ID (1)
		0x09, 0x30, //   Usage (X)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x7f, //   Logical Maximum (127)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x01, //   Report Count (1)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, desc.Numbered(ReportTypeInput))

	report, ok := desc.Report(ReportTypeInput, 1)
	require.True(t, ok)
	assert.True(t, report.Numbered())
	require.Len(t, report.Fields, 1)
	// byte 0 carries the report ID
	assert.Equal(t, 8, report.Fields[0].BitOffset)
	assert.Equal(t, 16, report.BitSize())
	assert.Equal(t, 2, report.ByteSize())

	_, ok = desc.Report(ReportTypeInput, 0)
	assert.False(t, ok)
}

func TestParseUsageRange(t *testing.T) {
	data := []byte{
		0x05, 0x09, // Usage Page (Button)
		0x09, 0x01, // Usage (Button1)
		0xa1, 0x01, // Collection (Application)
		0x19, 0x01, //   Usage Minimum (1)
		0x29, 0x03, //   Usage Maximum (3)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x01, //   Logical Maximum (1)
		0x95, 0x03, //   Report Count (3)
		0x75, 0x01, //   Report Size (1)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 1)
	field := report.Fields[0]
	assert.Equal(t, []Usage{
		NewUsage(0x09, 0x01),
		NewUsage(0x09, 0x02),
		NewUsage(0x09, 0x03),
	}, field.Usages)
	assert.Equal(t, NewUsage(0x09, 0x01), field.UsageMinimum)
	assert.Equal(t, NewUsage(0x09, 0x03), field.UsageMaximum)
}

func TestParseUsageRangeBeforeUsage(t *testing.T) {
	// A completed Min/Max pair is flushed to the usage list when a plain
	// Usage follows. The field must still carry the range.
	data := []byte{
		0x05, 0x09, // Usage Page (Button)
		0x19, 0x01, // Usage Minimum (1)
		0x29, 0x02, // Usage Maximum (2)
		0x09, 0x05, // Usage (Button5)
		0x25, 0x01, // Logical Maximum (1)
		0x75, 0x01, // Report Size (1)
		0x95, 0x03, // Report Count (3)
		0x81, 0x02, // Input (Data,Var,Abs)
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 1)
	field := report.Fields[0]
	assert.Equal(t, []Usage{
		NewUsage(0x09, 0x01),
		NewUsage(0x09, 0x02),
		NewUsage(0x09, 0x05),
	}, field.Usages)
	assert.Equal(t, NewUsage(0x09, 0x01), field.UsageMinimum)
	assert.Equal(t, NewUsage(0x09, 0x02), field.UsageMaximum)
}

func TestParseInvalidUsageRange(t *testing.T) {
	data := []byte{
		0x05, 0x09, // Usage Page (Button)
		0x19, 0x03, // Usage Minimum (3)
		0x29, 0x01, // Usage Maximum (1)
	}
	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrInvalidUsageRange)
}

func TestParseTruncated(t *testing.T) {
	// Report ID prefix declares a 1-byte payload, stream ends first.
	_, err := Parse([]byte{0x85})
	assert.ErrorIs(t, err, ErrTruncatedDescriptor)
}

func TestParseUnbalancedCollection(t *testing.T) {
	_, err := Parse([]byte{0xa1, 0x01})
	assert.ErrorIs(t, err, ErrUnbalancedCollection)

	_, err = Parse([]byte{0xc0})
	assert.ErrorIs(t, err, ErrUnbalancedCollection)
}

func TestParseUnbalancedPushPop(t *testing.T) {
	// unmatched Push
	_, err := Parse([]byte{0xa4})
	assert.ErrorIs(t, err, ErrUnbalancedPushPop)

	// Pop with nothing pushed
	_, err = Parse([]byte{0xb4})
	assert.ErrorIs(t, err, ErrUnbalancedPushPop)
}

func TestParsePushPopRestoresState(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0xa1, 0x01, // Collection (Application)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x7f, //   Logical Maximum (127)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x01, //   Report Count (1)
		0xa4,       //   Push
		0x25, 0x01, //   Logical Maximum (1)
		0x09, 0x30, //   Usage (X)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xb4,       //   Pop
		0x09, 0x31, //   Usage (Y)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 2)
	assert.Equal(t, int32(1), report.Fields[0].LogicalMaximum)
	assert.Equal(t, int32(127), report.Fields[1].LogicalMaximum)
}

// Zero-sized fields stay addressable; downstream tooling looks them up by
// usage even when they carry no bits.
func TestParseZeroSizeField(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0xa1, 0x01, // Collection (Application)
		0x09, 0x30, //   Usage (X)
		0x75, 0x00, //   Report Size (0)
		0x95, 0x01, //   Report Count (1)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 1)
	assert.Equal(t, 0, report.Fields[0].BitSize())
	assert.Equal(t, 0, report.BitSize())
}

func TestParseLongItemSkipped(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0xa1, 0x01, // Collection (Application)
		0xfe, 0x02, 0x42, 0xaa, 0xbb, //   long item, tag 0x42, 2 payload bytes
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, desc.Collections(), 1)
}

// A four-byte Usage payload carries its own usage page.
func TestParseExtendedUsage(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0xa1, 0x01, // Collection (Application)
		0x0b, 0xe2, 0x00, 0x0c, 0x00, //   Usage (Consumer/Mute)
		0x15, 0x00, //   Logical Minimum (0)
		0x25, 0x01, //   Logical Maximum (1)
		0x75, 0x01, //   Report Size (1)
		0x95, 0x01, //   Report Count (1)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	report, ok := desc.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 1)
	assert.Equal(t, NewUsage(0x0c, 0xe2), report.Fields[0].Usages[0])
}

// A failed parse still exposes everything built before the bad item.
func TestParsePartialDescriptor(t *testing.T) {
	data := append([]byte{}, mouseDescriptor...)
	data = append(data, 0xc0) // one End Collection too many

	desc, err := Parse(data)
	require.ErrorIs(t, err, ErrUnbalancedCollection)
	require.NotNil(t, desc)
	_, ok := desc.Report(ReportTypeInput, 0)
	assert.True(t, ok)
}

func TestParserFeed(t *testing.T) {
	parser := NewParser(nil)
	reader := NewItemReader(mouseDescriptor)
	var fields []*Field
	for {
		item, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		produced, err := parser.Feed(item)
		require.NoError(t, err)
		fields = append(fields, produced...)
	}
	_, err := parser.Finish()
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestParserFeedUnknownTag(t *testing.T) {
	parser := NewParser(nil)
	_, err := parser.Feed(Item{Tag: Tag(0xec)})
	assert.Error(t, err)
}

func TestItemReaderTruncatedLongItem(t *testing.T) {
	reader := NewItemReader([]byte{0xfe, 0x04, 0x42, 0xaa})
	_, err := reader.Next()
	assert.ErrorIs(t, err, ErrTruncatedDescriptor)
}
