package hidreport

import (
	"fmt"
	"strings"

	"github.com/bentiss/hid-tools/hiddesc"
	"github.com/bentiss/hid-tools/pkg/bits"
)

type segment struct {
	text      string
	startByte int
	endByte   int
}

// Format renders a raw report as human-readable lines. Each decoded element
// becomes a "Name: value" segment; segments whose source bytes overlap or
// touch the same byte are joined with " / " on one line.
func (c *Codec) Format(typ hiddesc.ReportType, data []byte) ([]string, error) {
	report, err := c.findReport(typ, data)
	if err != nil {
		return nil, err
	}
	var segments []segment
	for _, field := range report.Fields {
		size := int(field.ReportSize)
		for i := 0; i < int(field.ReportCount); i++ {
			usage, ok := field.Usage(i)
			if !ok {
				continue
			}
			offset := field.BitOffset + i*size
			var value int32
			if field.IsSigned() {
				value = bits.ReadSigned(data, offset, size)
			} else {
				value = int32(bits.Read(data, offset, size))
			}
			segments = append(segments, segment{
				text:      fmt.Sprintf("%s: %d", c.name(usage), value),
				startByte: offset / 8,
				endByte:   (offset + size - 1) / 8,
			})
		}
	}
	var (
		lines   []string
		current []string
		endByte = -1
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " / "))
			current = nil
		}
	}
	for _, seg := range segments {
		if len(current) > 0 && seg.startByte > endByte {
			flush()
		}
		current = append(current, seg.text)
		if seg.endByte > endByte {
			endByte = seg.endByte
		}
	}
	flush()
	return lines, nil
}
