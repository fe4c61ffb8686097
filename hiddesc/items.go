package hiddesc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Main items: xxxx 00 xx
// Global items: xxxx 01 xx
// Local items: xxxx 10 xx
// The last two bits of the prefix hold the payload size code. These
// constants carry the first 6 bits only.
const (
	TagInput         Tag = 0x80
	TagOutput        Tag = 0x90
	TagFeature       Tag = 0xb0
	TagCollection    Tag = 0xa0
	TagEndCollection Tag = 0xc0

	TagUsagePage       Tag = 0x04
	TagLogicalMinimum  Tag = 0x14
	TagLogicalMaximum  Tag = 0x24
	TagPhysicalMinimum Tag = 0x34
	TagPhysicalMaximum Tag = 0x44
	TagUnitExponent    Tag = 0x54
	TagUnit            Tag = 0x64
	TagReportSize      Tag = 0x74
	TagReportID        Tag = 0x84
	TagReportCount     Tag = 0x94
	TagPush            Tag = 0xa4
	TagPop             Tag = 0xb4

	TagUsage             Tag = 0x08
	TagUsageMinimum      Tag = 0x18
	TagUsageMaximum      Tag = 0x28
	TagDesignatorIndex   Tag = 0x38
	TagDesignatorMinimum Tag = 0x48
	TagDesignatorMaximum Tag = 0x58
	TagStringIndex       Tag = 0x68
	TagStringMinimum     Tag = 0x78
	TagStringMaximum     Tag = 0x88
	TagDelimiter         Tag = 0xa8

	// TagLong marks a long item (prefix byte 0xfe). The real tag lives in
	// Item.LongTag; the payload is carried but not interpreted.
	TagLong Tag = 0xfc
)

// Tag identifies an item. The value is the item prefix byte with the size
// bits masked off.
type Tag uint8

// ItemClass is the class encoded in bits 2-3 of the item prefix.
type ItemClass uint8

const (
	ItemClassMain ItemClass = iota
	ItemClassGlobal
	ItemClassLocal
	ItemClassReserved
)

func (t Tag) Class() ItemClass {
	return ItemClass(t >> 2 & 0x03)
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(0x%02x)", uint8(t))
}

var tagNames = map[Tag]string{
	TagInput:             "Input",
	TagOutput:            "Output",
	TagFeature:           "Feature",
	TagCollection:        "Collection",
	TagEndCollection:     "End Collection",
	TagUsagePage:         "Usage Page",
	TagLogicalMinimum:    "Logical Minimum",
	TagLogicalMaximum:    "Logical Maximum",
	TagPhysicalMinimum:   "Physical Minimum",
	TagPhysicalMaximum:   "Physical Maximum",
	TagUnitExponent:      "Unit Exponent",
	TagUnit:              "Unit",
	TagReportSize:        "Report Size",
	TagReportID:          "Report ID",
	TagReportCount:       "Report Count",
	TagPush:              "Push",
	TagPop:               "Pop",
	TagUsage:             "Usage",
	TagUsageMinimum:      "Usage Minimum",
	TagUsageMaximum:      "Usage Maximum",
	TagDesignatorIndex:   "Designator Index",
	TagDesignatorMinimum: "Designator Minimum",
	TagDesignatorMaximum: "Designator Maximum",
	TagStringIndex:       "String Index",
	TagStringMinimum:     "String Minimum",
	TagStringMaximum:     "String Maximum",
	TagDelimiter:         "Delimiter",
	TagLong:              "Long Item",
}

// sizeCodes maps the two size bits to payload lengths.
var sizeCodes = [4]int{0, 1, 2, 4}

// Item is one decoded unit of the descriptor stream.
type Item struct {
	Tag    Tag
	Offset int // byte offset of the prefix within the descriptor
	Data   []byte

	// LongTag is only set for TagLong items.
	LongTag uint8
}

// Value returns the payload as a little-endian unsigned integer.
func (i Item) Value() uint32 {
	var v uint32
	for n, b := range i.Data {
		if n == 4 {
			break
		}
		v |= uint32(b) << (8 * n)
	}
	return v
}

// SignedValue returns the payload sign-extended from its encoded width.
func (i Item) SignedValue() int32 {
	switch len(i.Data) {
	case 1:
		return int32(int8(i.Data[0]))
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(i.Data)))
	case 4:
		return int32(binary.LittleEndian.Uint32(i.Data))
	default:
		return 0
	}
}

// Encode renders the item back to its wire form.
func (i Item) Encode() []byte {
	if i.Tag == TagLong {
		out := make([]byte, 0, 3+len(i.Data))
		out = append(out, 0xfe, byte(len(i.Data)), i.LongTag)
		return append(out, i.Data...)
	}
	var sizeCode byte
	switch len(i.Data) {
	case 0:
		sizeCode = 0
	case 1:
		sizeCode = 1
	case 2:
		sizeCode = 2
	case 4:
		sizeCode = 3
	}
	out := make([]byte, 0, 1+len(i.Data))
	out = append(out, byte(i.Tag)|sizeCode)
	return append(out, i.Data...)
}

// Size returns the encoded size of the item including its prefix.
func (i Item) Size() int {
	if i.Tag == TagLong {
		return 3 + len(i.Data)
	}
	return 1 + len(i.Data)
}

// ItemReader decodes a descriptor byte stream into a sequence of items. It
// is restartable via Reset and performs no interpretation beyond framing.
type ItemReader struct {
	data []byte
	pos  int
}

func NewItemReader(data []byte) *ItemReader {
	return &ItemReader{data: data}
}

// Reset rewinds the reader to the start of the stream.
func (r *ItemReader) Reset() {
	r.pos = 0
}

// Next returns the next item, io.EOF at end of stream, or a wrapped
// ErrTruncatedDescriptor when the declared payload exceeds the remaining
// bytes.
func (r *ItemReader) Next() (Item, error) {
	if r.pos >= len(r.data) {
		return Item{}, io.EOF
	}
	offset := r.pos
	prefix := r.data[r.pos]
	r.pos++

	if prefix == 0xfe {
		// Long item: one byte of payload size, one byte of tag, then the
		// payload. Vendor specific, carried as opaque bytes.
		if r.pos+2 > len(r.data) {
			return Item{}, fmt.Errorf("long item at offset %d: %w", offset, ErrTruncatedDescriptor)
		}
		size := int(r.data[r.pos])
		longTag := r.data[r.pos+1]
		r.pos += 2
		if r.pos+size > len(r.data) {
			return Item{}, fmt.Errorf("long item at offset %d: %w", offset, ErrTruncatedDescriptor)
		}
		data := r.data[r.pos : r.pos+size]
		r.pos += size
		return Item{Tag: TagLong, Offset: offset, Data: data, LongTag: longTag}, nil
	}

	size := sizeCodes[prefix&0x03]
	if r.pos+size > len(r.data) {
		return Item{}, fmt.Errorf("item 0x%02x at offset %d: %w", prefix, offset, ErrTruncatedDescriptor)
	}
	data := r.data[r.pos : r.pos+size]
	r.pos += size
	return Item{Tag: Tag(prefix & 0xfc), Offset: offset, Data: data}, nil
}
