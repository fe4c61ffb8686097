// Package hiddesc parses HID report descriptors into a collection tree
// with per-report field geometry, and serializes built descriptors back
// to bytes.
//
// A parsed ReportDescriptor is never mutated afterwards and is safe to
// share across goroutines.
package hiddesc

import (
	"fmt"
	"slices"
)

// CollectionType is the payload of a Collection item.
type CollectionType uint8

const (
	CollectionTypePhysical CollectionType = iota
	CollectionTypeApplication
	CollectionTypeLogical
	CollectionTypeReport
	CollectionTypeNamedArray
	CollectionTypeUsageSwitch
	CollectionTypeUsageModifier
)

func (t CollectionType) String() string {
	switch t {
	case CollectionTypePhysical:
		return "Physical"
	case CollectionTypeApplication:
		return "Application"
	case CollectionTypeLogical:
		return "Logical"
	case CollectionTypeReport:
		return "Report"
	case CollectionTypeNamedArray:
		return "Named Array"
	case CollectionTypeUsageSwitch:
		return "Usage Switch"
	case CollectionTypeUsageModifier:
		return "Usage Modifier"
	}
	if t >= 0x80 {
		return fmt.Sprintf("Vendor Defined 0x%02x", uint8(t))
	}
	return fmt.Sprintf("Reserved 0x%02x", uint8(t))
}

// ReportType distinguishes the three report directions.
type ReportType uint8

const (
	ReportTypeInput ReportType = iota
	ReportTypeOutput
	ReportTypeFeature
)

func (t ReportType) String() string {
	switch t {
	case ReportTypeInput:
		return "Input"
	case ReportTypeOutput:
		return "Output"
	case ReportTypeFeature:
		return "Feature"
	}
	return fmt.Sprintf("ReportType(%d)", uint8(t))
}

// DataFlags is the flag byte of an Input, Output or Feature item.
type DataFlags uint32

const (
	DataFlagConstant      DataFlags = 1 << iota // 0 = Data, 1 = Constant
	DataFlagVariable                            // 0 = Array, 1 = Variable
	DataFlagRelative                            // 0 = Absolute, 1 = Relative
	DataFlagWrap                                // 0 = No wrap, 1 = Wrap
	DataFlagNonLinear                           // 0 = Linear, 1 = Non-linear
	DataFlagNoPreferred                         // 0 = Preferred state, 1 = No preferred
	DataFlagNullState                           // 0 = No null position, 1 = Null state
	DataFlagVolatile                            // 0 = Non-volatile, 1 = Volatile
	DataFlagBufferedBytes                       // 0 = Bit field, 1 = Buffered bytes
)

func (d DataFlags) IsConstant() bool      { return d&DataFlagConstant != 0 }
func (d DataFlags) IsVariable() bool      { return d&DataFlagVariable != 0 }
func (d DataFlags) IsArray() bool         { return !d.IsVariable() }
func (d DataFlags) IsRelative() bool      { return d&DataFlagRelative != 0 }
func (d DataFlags) IsWrap() bool          { return d&DataFlagWrap != 0 }
func (d DataFlags) IsNonLinear() bool     { return d&DataFlagNonLinear != 0 }
func (d DataFlags) IsNoPreferred() bool   { return d&DataFlagNoPreferred != 0 }
func (d DataFlags) IsNullState() bool     { return d&DataFlagNullState != 0 }
func (d DataFlags) IsVolatile() bool      { return d&DataFlagVolatile != 0 }
func (d DataFlags) IsBufferedBytes() bool { return d&DataFlagBufferedBytes != 0 }

// String renders the flags the way descriptor dumps spell them, e.g.
// "Data,Var,Abs" or "Cnst,Arr,Rel,Wrap".
func (d DataFlags) String() string {
	s := "Data"
	if d.IsConstant() {
		s = "Cnst"
	}
	if d.IsVariable() {
		s += ",Var"
	} else {
		s += ",Arr"
	}
	if d.IsRelative() {
		s += ",Rel"
	} else {
		s += ",Abs"
	}
	if d.IsWrap() {
		s += ",Wrap"
	}
	if d.IsNonLinear() {
		s += ",NonLin"
	}
	if d.IsNoPreferred() {
		s += ",NoPref"
	}
	if d.IsNullState() {
		s += ",Null"
	}
	if d.IsVolatile() {
		s += ",Vol"
	}
	if d.IsBufferedBytes() {
		s += ",Buff"
	}
	return s
}

// NewUsage combines a usage page and a usage ID.
func NewUsage(page, id uint16) Usage {
	return Usage(uint32(page)<<16 | uint32(id))
}

// Usage is a usage page and usage ID packed into one value.
type Usage uint32

func (u Usage) Page() uint16 {
	return uint16(u >> 16)
}

func (u Usage) ID() uint16 {
	return uint16(u)
}

func (u Usage) String() string {
	return fmt.Sprintf("0x%04x/0x%04x", u.Page(), u.ID())
}

// Field is one bit-sized, bit-positioned entry of a report. A Main item
// materializes exactly one Field covering ReportCount elements of ReportSize
// bits each.
type Field struct {
	Flags DataFlags
	Type  ReportType

	ReportID    uint8
	ReportSize  uint32
	ReportCount uint32
	// BitOffset is the position of the first element within the report,
	// including the leading 8 bits of the report ID byte for numbered
	// reports.
	BitOffset int

	// Usages holds one usage per element, expanded from the local usage
	// list and any usage ranges. When the Main item supplied fewer usages
	// than elements, the last usage repeats. Empty for padding fields.
	Usages       []Usage
	UsageMinimum Usage
	UsageMaximum Usage

	LogicalMinimum  int32
	LogicalMaximum  int32
	PhysicalMinimum int32
	PhysicalMaximum int32
	UnitExponent    uint32
	Unit            uint32

	DesignatorIndex   uint32
	DesignatorMinimum uint32
	DesignatorMaximum uint32
	StringIndex       uint32
	StringMinimum     uint32
	StringMaximum     uint32

	// Application is the usage of the nearest enclosing Application
	// collection, used to look up reports by application name.
	Application Usage
}

// BitSize is the total number of bits the field occupies in its report.
func (f *Field) BitSize() int {
	return int(f.ReportSize) * int(f.ReportCount)
}

// IsSigned reports whether field values use two's-complement encoding.
func (f *Field) IsSigned() bool {
	return f.LogicalMinimum < 0
}

// Usage returns the usage of element i. The last usage repeats when the
// Main item supplied fewer usages than elements.
func (f *Field) Usage(i int) (Usage, bool) {
	if len(f.Usages) == 0 {
		return 0, false
	}
	if i >= len(f.Usages) {
		i = len(f.Usages) - 1
	}
	return f.Usages[i], true
}

// MainItem is one entry of a collection: either a field or a nested
// collection, in wire order.
type MainItem struct {
	Field      *Field
	Collection *Collection
}

// A Collection groups related fields. All Main items between the Collection
// item and its End Collection belong to it; collections nest.
type Collection struct {
	Type  CollectionType
	Usage Usage
	Items []MainItem
}

// Walk visits every item of the collection in wire order, recursing into
// nested collections. Returning false stops the walk.
func (c *Collection) Walk(fn func(item MainItem) bool) bool {
	for _, item := range c.Items {
		if !fn(item) {
			return false
		}
		if item.Collection != nil {
			if !item.Collection.Walk(fn) {
				return false
			}
		}
	}
	return true
}

// Report is the ordered list of fields sharing one (type, ID) pair.
type Report struct {
	Type   ReportType
	ID     uint8
	Fields []*Field
}

// Numbered reports whether the report carries a leading report ID byte.
func (r *Report) Numbered() bool {
	return r.ID != 0
}

// BitSize is the total extent of the report in bits, including the leading
// report ID byte for numbered reports.
func (r *Report) BitSize() int {
	size := 0
	if r.Numbered() {
		size = 8
	}
	for _, f := range r.Fields {
		size += f.BitSize()
	}
	return size
}

// ByteSize is the report buffer size in bytes, rounded up.
func (r *Report) ByteSize() int {
	return (r.BitSize() + 7) / 8
}

// ReportDescriptor is the parse result: the collection tree plus the report
// tables for each report type. It is immutable after parsing and safe for
// concurrent read access.
type ReportDescriptor struct {
	// Root is an implicit container; its Items are the descriptor's
	// top-level collections.
	Root *Collection

	Input   map[uint8]*Report
	Output  map[uint8]*Report
	Feature map[uint8]*Report

	raw []byte
}

// Bytes returns the original descriptor bytes.
func (d *ReportDescriptor) Bytes() []byte {
	return d.raw
}

// Collections returns the top-level collections.
func (d *ReportDescriptor) Collections() []*Collection {
	collections := make([]*Collection, 0, len(d.Root.Items))
	for _, item := range d.Root.Items {
		if item.Collection != nil {
			collections = append(collections, item.Collection)
		}
	}
	return collections
}

func (d *ReportDescriptor) reports(typ ReportType) map[uint8]*Report {
	switch typ {
	case ReportTypeInput:
		return d.Input
	case ReportTypeOutput:
		return d.Output
	case ReportTypeFeature:
		return d.Feature
	}
	return nil
}

// Report looks up the report with the given type and ID. ID 0 addresses the
// unnumbered report.
func (d *ReportDescriptor) Report(typ ReportType, id uint8) (*Report, bool) {
	r, ok := d.reports(typ)[id]
	return r, ok
}

// Reports returns all reports of the given type in ascending ID order.
func (d *ReportDescriptor) Reports(typ ReportType) []*Report {
	m := d.reports(typ)
	ids := make([]uint8, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	reports := make([]*Report, len(ids))
	for i, id := range ids {
		reports[i] = m[id]
	}
	return reports
}

// Numbered reports whether any report of the given type carries a report
// ID.
func (d *ReportDescriptor) Numbered(typ ReportType) bool {
	for id := range d.reports(typ) {
		if id != 0 {
			return true
		}
	}
	return false
}

// Walk visits every main item of the tree in wire order.
func (d *ReportDescriptor) Walk(fn func(item MainItem) bool) {
	d.Root.Walk(fn)
}
