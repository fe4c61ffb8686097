package hiddesc

import (
	"fmt"
	"io"
	"strings"

	"github.com/bentiss/hid-tools/hidusage"
)

// Dumper renders a descriptor as the annotated hex dump used by the
// recording tools: one item per line, raw bytes first, then a comment with
// the item name, the interpreted value and the byte offset of the item.
// Nesting depth shows as leading dots in the comment. Reparsing the hex
// column reproduces the descriptor bytes exactly.
type Dumper struct {
	res hidusage.Resolver
}

func NewDumper(res hidusage.Resolver) *Dumper {
	if res == nil {
		res = hidusage.NewResolver()
	}
	return &Dumper{res: res}
}

// Lines renders one string per descriptor item, without trailing newlines.
func (d *Dumper) Lines(desc *ReportDescriptor) ([]string, error) {
	var lines []string
	depth := 0
	// usage naming needs the usage page in effect at each item, including
	// across Push/Pop
	page := uint16(0)
	var pageStack []uint16

	reader := NewItemReader(desc.Bytes())
	for {
		item, err := reader.Next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}

		switch item.Tag {
		case TagUsagePage:
			page = uint16(item.Value())
		case TagPush:
			pageStack = append(pageStack, page)
		case TagPop:
			if len(pageStack) > 0 {
				page = pageStack[len(pageStack)-1]
				pageStack = pageStack[:len(pageStack)-1]
			}
		case TagEndCollection:
			if depth > 0 {
				depth--
			}
		}

		raw := rawColumn(item)
		descr := strings.Repeat(".", depth) + d.describe(item, page)
		lines = append(lines, fmt.Sprintf("%-30s // %-35s %d", raw, descr, item.Offset))

		if item.Tag == TagCollection {
			depth++
		}
	}
}

// Dump writes the annotated dump, one line per item.
func (d *Dumper) Dump(w io.Writer, desc *ReportDescriptor) error {
	lines, err := d.Lines(desc)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func rawColumn(item Item) string {
	var sb strings.Builder
	for _, b := range item.Encode() {
		fmt.Fprintf(&sb, "0x%02x, ", b)
	}
	return strings.TrimRight(sb.String(), " ")
}

func (d *Dumper) describe(item Item, page uint16) string {
	name := item.Tag.String()
	switch item.Tag {
	case TagInput, TagOutput, TagFeature:
		return fmt.Sprintf("%s (%s)", name, DataFlags(item.Value()))
	case TagCollection:
		return fmt.Sprintf("%s (%s)", name, CollectionType(item.Value()))
	case TagEndCollection, TagPush, TagPop:
		// fixed single-byte items, no value column
		return name
	case TagUsagePage:
		return fmt.Sprintf("%s (%s)", name, hidusage.FormatPage(d.res, uint16(item.Value())))
	case TagUsage:
		u := usageValue(item, page)
		return fmt.Sprintf("%s (%s)", name, hidusage.FormatUsage(d.res, u.Page(), u.ID()))
	case TagUsageMinimum, TagUsageMaximum:
		return fmt.Sprintf("%s (%d)", name, usageValue(item, page).ID())
	case TagLogicalMinimum, TagLogicalMaximum, TagPhysicalMinimum, TagPhysicalMaximum:
		return fmt.Sprintf("%s (%d)", name, item.SignedValue())
	case TagUnitExponent:
		return fmt.Sprintf("%s (%d)", name, unitExponent(item.Value()))
	case TagUnit:
		return fmt.Sprintf("%s (0x%x)", name, item.Value())
	case TagLong:
		return fmt.Sprintf("%s (tag 0x%02x)", name, item.LongTag)
	default:
		return fmt.Sprintf("%s (%d)", name, item.Value())
	}
}

func usageValue(item Item, page uint16) Usage {
	if len(item.Data) == 4 {
		return Usage(item.Value())
	}
	return NewUsage(page, uint16(item.Value()))
}

// unitExponent decodes the 4-bit two's-complement unit exponent.
func unitExponent(v uint32) int {
	e := int(v & 0xf)
	if e > 7 {
		e -= 16
	}
	return e
}
