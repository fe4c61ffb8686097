package hiddesc

import (
	"io"
)

// Encoder serializes a structured ReportDescriptor back to descriptor
// bytes. It tracks the global item state so values already in effect are
// not re-emitted, which is how hand-written descriptors read too.
//
// Encoding a parsed descriptor does not reproduce the original bytes
// (Bytes() keeps those verbatim); the encoder exists for descriptors built
// programmatically, e.g. for virtual devices.
type Encoder struct {
	w      io.Writer
	desc   *ReportDescriptor
	global globalState
	// page 0 is not a valid usage page, so the zero value doubles as
	// "nothing emitted yet"
}

func NewEncoder(w io.Writer, desc *ReportDescriptor) *Encoder {
	return &Encoder{w: w, desc: desc}
}

func (e *Encoder) Encode() error {
	for _, collection := range e.desc.Collections() {
		if err := e.encodeCollection(collection); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeCollection(c *Collection) error {
	if c.Usage != 0 {
		if err := e.encodeUsagePage(c.Usage.Page()); err != nil {
			return err
		}
		if err := e.emitUnsigned(TagUsage, uint32(c.Usage.ID())); err != nil {
			return err
		}
	}
	if err := e.emit(Item{Tag: TagCollection, Data: []byte{byte(c.Type)}}); err != nil {
		return err
	}
	for _, item := range c.Items {
		if item.Collection != nil {
			if err := e.encodeCollection(item.Collection); err != nil {
				return err
			}
		}
		if item.Field != nil {
			if err := e.encodeField(item.Field); err != nil {
				return err
			}
		}
	}
	return e.emit(Item{Tag: TagEndCollection})
}

func (e *Encoder) encodeField(f *Field) error {
	if f.ReportID != 0 && f.ReportID != e.global.reportID {
		if err := e.emitUnsigned(TagReportID, uint32(f.ReportID)); err != nil {
			return err
		}
		e.global.reportID = f.ReportID
	}
	if f.LogicalMinimum != e.global.logicalMinimum {
		if err := e.emitSigned(TagLogicalMinimum, f.LogicalMinimum); err != nil {
			return err
		}
		e.global.logicalMinimum = f.LogicalMinimum
	}
	if f.LogicalMaximum != e.global.logicalMaximum {
		if err := e.emitSigned(TagLogicalMaximum, f.LogicalMaximum); err != nil {
			return err
		}
		e.global.logicalMaximum = f.LogicalMaximum
	}
	if f.PhysicalMinimum != e.global.physicalMinimum {
		if err := e.emitSigned(TagPhysicalMinimum, f.PhysicalMinimum); err != nil {
			return err
		}
		e.global.physicalMinimum = f.PhysicalMinimum
	}
	if f.PhysicalMaximum != e.global.physicalMaximum {
		if err := e.emitSigned(TagPhysicalMaximum, f.PhysicalMaximum); err != nil {
			return err
		}
		e.global.physicalMaximum = f.PhysicalMaximum
	}
	if f.UnitExponent != e.global.unitExponent {
		if err := e.emitUnsigned(TagUnitExponent, f.UnitExponent); err != nil {
			return err
		}
		e.global.unitExponent = f.UnitExponent
	}
	if f.Unit != e.global.unit {
		if err := e.emitUnsigned(TagUnit, f.Unit); err != nil {
			return err
		}
		e.global.unit = f.Unit
	}
	if f.ReportSize != e.global.reportSize {
		if err := e.emitUnsigned(TagReportSize, f.ReportSize); err != nil {
			return err
		}
		e.global.reportSize = f.ReportSize
	}
	if f.ReportCount != e.global.reportCount {
		if err := e.emitUnsigned(TagReportCount, f.ReportCount); err != nil {
			return err
		}
		e.global.reportCount = f.ReportCount
	}
	if err := e.encodeUsages(f); err != nil {
		return err
	}
	var tag Tag
	switch f.Type {
	case ReportTypeInput:
		tag = TagInput
	case ReportTypeOutput:
		tag = TagOutput
	case ReportTypeFeature:
		tag = TagFeature
	}
	return e.emit(Item{Tag: tag, Data: []byte{byte(f.Flags)}})
}

func (e *Encoder) encodeUsages(f *Field) error {
	if f.UsageMinimum != 0 || f.UsageMaximum != 0 {
		if err := e.encodeUsagePage(f.UsageMinimum.Page()); err != nil {
			return err
		}
		if err := e.emitUnsigned(TagUsageMinimum, uint32(f.UsageMinimum.ID())); err != nil {
			return err
		}
		return e.emitUnsigned(TagUsageMaximum, uint32(f.UsageMaximum.ID()))
	}
	// plain usage list; a trailing usage repeated to fill the report count
	// collapses back into a single item
	var prev Usage
	for i, u := range f.Usages {
		if i > 0 && u == prev {
			continue
		}
		if err := e.encodeUsagePage(u.Page()); err != nil {
			return err
		}
		if err := e.emitUnsigned(TagUsage, uint32(u.ID())); err != nil {
			return err
		}
		prev = u
	}
	return nil
}

func (e *Encoder) encodeUsagePage(page uint16) error {
	if page == 0 || page == e.global.usagePage {
		return nil
	}
	if err := e.emitUnsigned(TagUsagePage, uint32(page)); err != nil {
		return err
	}
	e.global.usagePage = page
	return nil
}

func (e *Encoder) emitUnsigned(tag Tag, v uint32) error {
	var data []byte
	switch {
	case v <= 0xff:
		data = []byte{byte(v)}
	case v <= 0xffff:
		data = []byte{byte(v), byte(v >> 8)}
	default:
		data = []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
	return e.emit(Item{Tag: tag, Data: data})
}

func (e *Encoder) emitSigned(tag Tag, v int32) error {
	var data []byte
	switch {
	case v >= -128 && v <= 127:
		data = []byte{byte(v)}
	case v >= -32768 && v <= 32767:
		data = []byte{byte(v), byte(v >> 8)}
	default:
		data = []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
	return e.emit(Item{Tag: tag, Data: data})
}

func (e *Encoder) emit(item Item) error {
	_, err := e.w.Write(item.Encode())
	return err
}
