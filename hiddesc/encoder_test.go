package hiddesc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBuiltDescriptor(t *testing.T) {
	field := &Field{
		Flags:          DataFlags(0x02),
		Type:           ReportTypeInput,
		ReportSize:     8,
		ReportCount:    1,
		LogicalMaximum: 127,
		Usages:         []Usage{NewUsage(0x01, 0x30)},
	}
	desc := &ReportDescriptor{
		Root: &Collection{
			Items: []MainItem{{Collection: &Collection{
				Type:  CollectionTypeApplication,
				Usage: NewUsage(0x01, 0x02),
				Items: []MainItem{{Field: field}},
			}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, desc).Encode())
	assert.Equal(t, []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x02, // Usage (Mouse)
		0xa1, 0x01, // Collection (Application)
		0x25, 0x7f, //   Logical Maximum (127)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x01, //   Report Count (1)
		0x09, 0x30, //   Usage (X)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}, buf.Bytes())
}

// Encoding a parsed descriptor and parsing the result again must produce the
// same reports and field geometry, even though item order may differ from
// the original byte stream.
func TestEncodeParseStability(t *testing.T) {
	desc, err := Parse(mouseDescriptor)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, desc).Encode())

	reparsed, err := Parse(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, desc.Collections(), reparsed.Collections())
	for _, typ := range []ReportType{ReportTypeInput, ReportTypeOutput, ReportTypeFeature} {
		assert.Equal(t, desc.Reports(typ), reparsed.Reports(typ))
	}
}

func TestEncodeUsageRange(t *testing.T) {
	data := []byte{
		0x05, 0x09, // Usage Page (Button)
		0xa1, 0x01, // Collection (Application)
		0x19, 0x01, //   Usage Minimum (1)
		0x29, 0x03, //   Usage Maximum (3)
		0x25, 0x01, //   Logical Maximum (1)
		0x75, 0x01, //   Report Size (1)
		0x95, 0x03, //   Report Count (3)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, desc).Encode())

	// ranges stay ranges instead of being expanded into usage lists
	assert.True(t, bytes.Contains(buf.Bytes(), []byte{0x19, 0x01, 0x29, 0x03}))

	reparsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	report, ok := reparsed.Report(ReportTypeInput, 0)
	require.True(t, ok)
	require.Len(t, report.Fields, 1)
	assert.Len(t, report.Fields[0].Usages, 3)
}

func TestEncodeNumberedReports(t *testing.T) {
	data := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x06, // Usage (Keyboard)
		0xa1, 0x01, // Collection (Application)
		0x85, 0x01, //   Report ID (1)
		0x09, 0x30, //   Usage (X)
		0x25, 0x7f, //   Logical Maximum (127)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x01, //   Report Count (1)
		0x81, 0x02, //   Input (Data,Var,Abs)
		0x85, 0x02, //   Report ID (2)
		0x09, 0x31, //   Usage (Y)
		0xb1, 0x02, //   Feature (Data,Var,Abs)
		0xc0, // End Collection
	}
	desc, err := Parse(data)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, desc).Encode())

	reparsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	_, ok := reparsed.Report(ReportTypeInput, 1)
	assert.True(t, ok)
	_, ok = reparsed.Report(ReportTypeFeature, 2)
	assert.True(t, ok)
}
