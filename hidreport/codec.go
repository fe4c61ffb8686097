// Package hidreport packs and unpacks report payloads using the field
// geometry of a parsed report descriptor.
//
// Values cross the package boundary by usage name: encoding pulls named
// values from a ValueSource, decoding produces an ordered list of
// (usage name, value) pairs. Any struct, map or record type can sit on
// either side of that contract.
package hidreport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bentiss/hid-tools/hiddesc"
	"github.com/bentiss/hid-tools/hidusage"
	"github.com/bentiss/hid-tools/pkg/bits"
)

var (
	// ErrUnknownReport is returned when no report matches the requested
	// type, ID or application.
	ErrUnknownReport = errors.New("unknown report")
	// ErrShortReport is returned when a buffer holds fewer bytes than the
	// report requires.
	ErrShortReport = errors.New("short report")
)

// ValueSource supplies named field values for encoding. Missing usages
// encode as 0.
type ValueSource interface {
	Get(name string) (int32, bool)
}

// ValueSink accumulates named field values during decoding.
type ValueSink interface {
	Set(name string, value int32)
}

// Values is a map-backed ValueSource and ValueSink.
type Values map[string]int32

func (v Values) Get(name string) (int32, bool) {
	value, ok := v[name]
	return value, ok
}

func (v Values) Set(name string, value int32) {
	v[name] = value
}

// UsageValue is one decoded element: the usage, its resolved name and the
// numeric value.
type UsageValue struct {
	Usage hiddesc.Usage
	Name  string
	Value int32
}

// Codec converts between named field values and packed report bytes for one
// descriptor. It holds no mutable state and is safe for concurrent use.
type Codec struct {
	desc *hiddesc.ReportDescriptor
	res  hidusage.Resolver
}

func NewCodec(desc *hiddesc.ReportDescriptor, res hidusage.Resolver) *Codec {
	if res == nil {
		res = hidusage.NewResolver()
	}
	return &Codec{desc: desc, res: res}
}

func (c *Codec) name(u hiddesc.Usage) string {
	return hidusage.FormatUsage(c.res, u.Page(), u.ID())
}

// lookup finds the target report. A non-empty application selects by the
// owning Application collection's usage name (and by ID too when id is not
// 0); otherwise the ID alone decides.
func (c *Codec) lookup(typ hiddesc.ReportType, id uint8, application string) (*hiddesc.Report, error) {
	if application == "" {
		report, ok := c.desc.Report(typ, id)
		if !ok {
			return nil, fmt.Errorf("%s report %d: %w", typ, id, ErrUnknownReport)
		}
		return report, nil
	}
	for _, report := range c.desc.Reports(typ) {
		if id != 0 && report.ID != id {
			continue
		}
		for _, field := range report.Fields {
			if field.Application == 0 {
				continue
			}
			if strings.EqualFold(c.name(field.Application), application) {
				return report, nil
			}
		}
	}
	return nil, fmt.Errorf("%s report for application %q: %w", typ, application, ErrUnknownReport)
}

// Encode packs the values supplied by src into a report buffer. Numbered
// reports get their ID as the leading byte. Usages src does not know encode
// as 0. The buffer is built from scratch; on error nothing is returned.
func (c *Codec) Encode(typ hiddesc.ReportType, id uint8, application string, src ValueSource) ([]byte, error) {
	report, err := c.lookup(typ, id, application)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, report.ByteSize())
	if report.Numbered() {
		buf[0] = report.ID
	}
	for _, field := range report.Fields {
		size := int(field.ReportSize)
		for i := 0; i < int(field.ReportCount); i++ {
			usage, ok := field.Usage(i)
			if !ok {
				continue // padding
			}
			value, _ := src.Get(c.name(usage))
			bits.Write(buf, field.BitOffset+i*size, size, bits.Truncate(value, size))
		}
	}
	return buf, nil
}

// Decode unpacks a raw report into its ordered (usage name, value) pairs.
// The report ID is taken from the first byte when the descriptor has
// numbered reports of this type, otherwise the unnumbered report is used.
func (c *Codec) Decode(typ hiddesc.ReportType, data []byte) ([]UsageValue, error) {
	report, err := c.findReport(typ, data)
	if err != nil {
		return nil, err
	}
	var values []UsageValue
	for _, field := range report.Fields {
		size := int(field.ReportSize)
		for i := 0; i < int(field.ReportCount); i++ {
			usage, ok := field.Usage(i)
			if !ok {
				continue // padding
			}
			offset := field.BitOffset + i*size
			var value int32
			if field.IsSigned() {
				value = bits.ReadSigned(data, offset, size)
			} else {
				value = int32(bits.Read(data, offset, size))
			}
			values = append(values, UsageValue{
				Usage: usage,
				Name:  c.name(usage),
				Value: value,
			})
		}
	}
	return values, nil
}

// DecodeTo feeds the decoded pairs into sink, in field order.
func (c *Codec) DecodeTo(typ hiddesc.ReportType, data []byte, sink ValueSink) error {
	values, err := c.Decode(typ, data)
	if err != nil {
		return err
	}
	for _, v := range values {
		sink.Set(v.Name, v.Value)
	}
	return nil
}

func (c *Codec) findReport(typ hiddesc.ReportType, data []byte) (*hiddesc.Report, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s report: %w", typ, ErrShortReport)
	}
	id := uint8(0)
	if c.desc.Numbered(typ) {
		id = data[0]
	}
	report, ok := c.desc.Report(typ, id)
	if !ok {
		return nil, fmt.Errorf("%s report %d: %w", typ, id, ErrUnknownReport)
	}
	if len(data)*8 < report.BitSize() {
		return nil, fmt.Errorf("%s report %d needs %d bytes, got %d: %w",
			typ, id, report.ByteSize(), len(data), ErrShortReport)
	}
	return report, nil
}
