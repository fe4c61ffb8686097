package hiddesc

import (
	"fmt"
	"io"
)

// globalState is the set of Global items in effect. Snapshots of it are
// pushed and popped by the Push/Pop items.
type globalState struct {
	usagePage       uint16
	logicalMinimum  int32
	logicalMaximum  int32
	physicalMinimum int32
	physicalMaximum int32
	unitExponent    uint32
	unit            uint32
	reportSize      uint32
	reportCount     uint32
	reportID        uint8
}

// usageEntry is one pending local usage: an individual usage (lo == hi) or a
// completed Usage Minimum/Maximum range.
type usageEntry struct {
	lo Usage
	hi Usage
}

// localState accumulates Local items. It is cleared after every Main item.
type localState struct {
	pending []usageEntry

	usageMinimum    Usage
	hasUsageMinimum bool
	usageMaximum    Usage
	hasUsageMaximum bool

	// first completed Usage Minimum/Maximum pair; pushRange clears the
	// has flags when flushing to pending, so the field keeps the range here
	rangeLow  Usage
	rangeHigh Usage
	hasRange  bool

	designatorIndex   uint32
	designatorMinimum uint32
	designatorMaximum uint32
	stringIndex       uint32
	stringMinimum     uint32
	stringMaximum     uint32
}

type reportKey struct {
	typ ReportType
	id  uint8
}

type parserState struct {
	global      globalState
	local       localState
	globalStack []globalState

	root  *Collection
	stack []*Collection

	reports map[reportKey]*Report
	nextBit map[reportKey]int
}

func newParserState() *parserState {
	root := &Collection{}
	return &parserState{
		root:    root,
		stack:   []*Collection{root},
		reports: make(map[reportKey]*Report),
		nextBit: make(map[reportKey]int),
	}
}

func (s *parserState) current() *Collection {
	return s.stack[len(s.stack)-1]
}

// application returns the usage of the nearest enclosing Application
// collection, or 0.
func (s *parserState) application() Usage {
	for i := len(s.stack) - 1; i > 0; i-- {
		if s.stack[i].Type == CollectionTypeApplication {
			return s.stack[i].Usage
		}
	}
	return 0
}

func (s *parserState) descriptor(raw []byte) *ReportDescriptor {
	desc := &ReportDescriptor{
		Root:    s.root,
		Input:   make(map[uint8]*Report),
		Output:  make(map[uint8]*Report),
		Feature: make(map[uint8]*Report),
		raw:     raw,
	}
	for key, report := range s.reports {
		desc.reports(key.typ)[key.id] = report
	}
	return desc
}

type commandFn func(s *parserState, item Item) ([]*Field, error)

var commandMap = map[Tag]commandFn{
	TagInput:         cmdInput,
	TagOutput:        cmdOutput,
	TagFeature:       cmdFeature,
	TagCollection:    cmdCollection,
	TagEndCollection: cmdEndCollection,

	TagUsagePage:       cmdUsagePage,
	TagLogicalMinimum:  cmdLogicalMinimum,
	TagLogicalMaximum:  cmdLogicalMaximum,
	TagPhysicalMinimum: cmdPhysicalMinimum,
	TagPhysicalMaximum: cmdPhysicalMaximum,
	TagUnitExponent:    cmdUnitExponent,
	TagUnit:            cmdUnit,
	TagReportSize:      cmdReportSize,
	TagReportID:        cmdReportID,
	TagReportCount:     cmdReportCount,
	TagPush:            cmdPush,
	TagPop:             cmdPop,

	TagUsage:             cmdUsage,
	TagUsageMinimum:      cmdUsageMinimum,
	TagUsageMaximum:      cmdUsageMaximum,
	TagDesignatorIndex:   cmdDesignatorIndex,
	TagDesignatorMinimum: cmdDesignatorMinimum,
	TagDesignatorMaximum: cmdDesignatorMaximum,
	TagStringIndex:       cmdStringIndex,
	TagStringMinimum:     cmdStringMinimum,
	TagStringMaximum:     cmdStringMaximum,
	TagDelimiter:         cmdDelimiter,
	TagLong:              cmdLongItem,
}

// Parser folds a descriptor item stream into a ReportDescriptor. Items can
// be fed one at a time, which keeps the state machine testable step by
// step; Parse drives the whole stream.
type Parser struct {
	reader *ItemReader
	state  *parserState
	data   []byte
}

func NewParser(data []byte) *Parser {
	return &Parser{
		reader: NewItemReader(data),
		state:  newParserState(),
		data:   data,
	}
}

// Parse decodes a complete report descriptor.
func Parse(data []byte) (*ReportDescriptor, error) {
	return NewParser(data).Parse()
}

// Parse consumes the whole item stream. On failure the returned descriptor
// holds everything built up to the offending item, so best-effort callers
// can still inspect it.
func (p *Parser) Parse() (*ReportDescriptor, error) {
	for {
		item, err := p.reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.state.descriptor(p.data), err
		}
		if _, err := p.Feed(item); err != nil {
			return p.state.descriptor(p.data), fmt.Errorf("item %s at offset %d: %w", item.Tag, item.Offset, err)
		}
	}
	return p.Finish()
}

// Feed applies a single item to the parser state and returns any fields the
// item materialized (only Main items produce fields).
func (p *Parser) Feed(item Item) ([]*Field, error) {
	fn := commandMap[item.Tag]
	if fn == nil {
		return nil, fmt.Errorf("unknown item tag 0x%02x", uint8(item.Tag))
	}
	return fn(p.state, item)
}

// Finish validates the terminal conditions and returns the descriptor.
func (p *Parser) Finish() (*ReportDescriptor, error) {
	desc := p.state.descriptor(p.data)
	if len(p.state.stack) != 1 {
		return desc, fmt.Errorf("%d collection(s) left open: %w", len(p.state.stack)-1, ErrUnbalancedCollection)
	}
	if len(p.state.globalStack) != 0 {
		return desc, fmt.Errorf("%d pushed state(s) left on the stack: %w", len(p.state.globalStack), ErrUnbalancedPushPop)
	}
	return desc, nil
}

// Descriptor returns whatever has been built so far without validating the
// terminal conditions.
func (p *Parser) Descriptor() *ReportDescriptor {
	return p.state.descriptor(p.data)
}

func cmdInput(s *parserState, item Item) ([]*Field, error) {
	return s.mainItem(ReportTypeInput, item)
}

func cmdOutput(s *parserState, item Item) ([]*Field, error) {
	return s.mainItem(ReportTypeOutput, item)
}

func cmdFeature(s *parserState, item Item) ([]*Field, error) {
	return s.mainItem(ReportTypeFeature, item)
}

// mainItem materializes a field from the current global and local state,
// assigns its bit offset within the (type, report ID) report, and clears the
// local state.
func (s *parserState) mainItem(typ ReportType, item Item) ([]*Field, error) {
	usages, err := s.local.expandUsages()
	if err != nil {
		return nil, err
	}

	key := reportKey{typ: typ, id: s.global.reportID}
	report, ok := s.reports[key]
	if !ok {
		report = &Report{Type: typ, ID: s.global.reportID}
		s.reports[key] = report
		if key.id != 0 {
			// byte 0 carries the report ID
			s.nextBit[key] = 8
		}
	}

	field := &Field{
		Flags: DataFlags(item.Value()),
		Type:  typ,

		ReportID:    s.global.reportID,
		ReportSize:  s.global.reportSize,
		ReportCount: s.global.reportCount,
		BitOffset:   s.nextBit[key],

		Usages:       usages,
		UsageMinimum: usageOrZero(s.local.hasRange, s.local.rangeLow),
		UsageMaximum: usageOrZero(s.local.hasRange, s.local.rangeHigh),

		LogicalMinimum:  s.global.logicalMinimum,
		LogicalMaximum:  s.global.logicalMaximum,
		PhysicalMinimum: s.global.physicalMinimum,
		PhysicalMaximum: s.global.physicalMaximum,
		UnitExponent:    s.global.unitExponent,
		Unit:            s.global.unit,

		DesignatorIndex:   s.local.designatorIndex,
		DesignatorMinimum: s.local.designatorMinimum,
		DesignatorMaximum: s.local.designatorMaximum,
		StringIndex:       s.local.stringIndex,
		StringMinimum:     s.local.stringMinimum,
		StringMaximum:     s.local.stringMaximum,

		Application: s.application(),
	}

	s.nextBit[key] += field.BitSize()
	report.Fields = append(report.Fields, field)
	current := s.current()
	current.Items = append(current.Items, MainItem{Field: field})

	s.local = localState{}
	return []*Field{field}, nil
}

func usageOrZero(has bool, u Usage) Usage {
	if !has {
		return 0
	}
	return u
}

// expandUsages flattens the pending usage list, expanding completed ranges
// into individual usages.
func (l *localState) expandUsages() ([]Usage, error) {
	if l.hasUsageMinimum && l.hasUsageMaximum {
		// a trailing completed pair not yet flushed by a Usage item
		if err := l.pushRange(); err != nil {
			return nil, err
		}
	}
	if len(l.pending) == 0 {
		return nil, nil
	}
	var usages []Usage
	for _, entry := range l.pending {
		for u := entry.lo; ; u++ {
			usages = append(usages, u)
			if u == entry.hi {
				break
			}
		}
	}
	return usages, nil
}

func (l *localState) pushRange() error {
	if l.usageMaximum < l.usageMinimum {
		return fmt.Errorf("usage maximum %s < usage minimum %s: %w",
			l.usageMaximum, l.usageMinimum, ErrInvalidUsageRange)
	}
	l.pending = append(l.pending, usageEntry{lo: l.usageMinimum, hi: l.usageMaximum})
	if !l.hasRange {
		l.rangeLow = l.usageMinimum
		l.rangeHigh = l.usageMaximum
		l.hasRange = true
	}
	l.hasUsageMinimum = false
	l.hasUsageMaximum = false
	return nil
}

func cmdCollection(s *parserState, item Item) ([]*Field, error) {
	var usage Usage
	if len(s.local.pending) > 0 {
		usage = s.local.pending[0].lo
	}
	c := &Collection{
		Type:  CollectionType(item.Value()),
		Usage: usage,
	}
	current := s.current()
	current.Items = append(current.Items, MainItem{Collection: c})
	s.stack = append(s.stack, c)
	s.local = localState{}
	return nil, nil
}

func cmdEndCollection(s *parserState, item Item) ([]*Field, error) {
	if len(s.stack) == 1 {
		return nil, fmt.Errorf("end collection without matching collection: %w", ErrUnbalancedCollection)
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.local = localState{}
	return nil, nil
}

func cmdUsagePage(s *parserState, item Item) ([]*Field, error) {
	s.global.usagePage = uint16(item.Value())
	return nil, nil
}

func cmdLogicalMinimum(s *parserState, item Item) ([]*Field, error) {
	s.global.logicalMinimum = item.SignedValue()
	return nil, nil
}

func cmdLogicalMaximum(s *parserState, item Item) ([]*Field, error) {
	s.global.logicalMaximum = item.SignedValue()
	return nil, nil
}

func cmdPhysicalMinimum(s *parserState, item Item) ([]*Field, error) {
	s.global.physicalMinimum = item.SignedValue()
	return nil, nil
}

func cmdPhysicalMaximum(s *parserState, item Item) ([]*Field, error) {
	s.global.physicalMaximum = item.SignedValue()
	return nil, nil
}

func cmdUnitExponent(s *parserState, item Item) ([]*Field, error) {
	s.global.unitExponent = item.Value()
	return nil, nil
}

func cmdUnit(s *parserState, item Item) ([]*Field, error) {
	s.global.unit = item.Value()
	return nil, nil
}

func cmdReportSize(s *parserState, item Item) ([]*Field, error) {
	s.global.reportSize = item.Value()
	return nil, nil
}

func cmdReportID(s *parserState, item Item) ([]*Field, error) {
	s.global.reportID = uint8(item.Value())
	return nil, nil
}

func cmdReportCount(s *parserState, item Item) ([]*Field, error) {
	s.global.reportCount = item.Value()
	return nil, nil
}

func cmdPush(s *parserState, item Item) ([]*Field, error) {
	s.globalStack = append(s.globalStack, s.global)
	return nil, nil
}

func cmdPop(s *parserState, item Item) ([]*Field, error) {
	if len(s.globalStack) == 0 {
		return nil, fmt.Errorf("pop with empty state stack: %w", ErrUnbalancedPushPop)
	}
	s.global = s.globalStack[len(s.globalStack)-1]
	s.globalStack = s.globalStack[:len(s.globalStack)-1]
	return nil, nil
}

// localUsage resolves a Usage/Usage Minimum/Usage Maximum payload. A 4-byte
// payload carries its own usage page in the high 16 bits; shorter payloads
// use the usage page currently in effect.
func (s *parserState) localUsage(item Item) Usage {
	v := item.Value()
	if len(item.Data) == 4 {
		return Usage(v)
	}
	return NewUsage(s.global.usagePage, uint16(v))
}

func cmdUsage(s *parserState, item Item) ([]*Field, error) {
	if s.local.hasUsageMinimum && s.local.hasUsageMaximum {
		if err := s.local.pushRange(); err != nil {
			return nil, err
		}
	}
	u := s.localUsage(item)
	s.local.pending = append(s.local.pending, usageEntry{lo: u, hi: u})
	return nil, nil
}

func cmdUsageMinimum(s *parserState, item Item) ([]*Field, error) {
	s.local.usageMinimum = s.localUsage(item)
	s.local.hasUsageMinimum = true
	if s.local.hasUsageMaximum {
		return nil, s.local.pushRange()
	}
	return nil, nil
}

func cmdUsageMaximum(s *parserState, item Item) ([]*Field, error) {
	s.local.usageMaximum = s.localUsage(item)
	s.local.hasUsageMaximum = true
	if s.local.hasUsageMinimum {
		return nil, s.local.pushRange()
	}
	return nil, nil
}

func cmdDesignatorIndex(s *parserState, item Item) ([]*Field, error) {
	s.local.designatorIndex = item.Value()
	return nil, nil
}

func cmdDesignatorMinimum(s *parserState, item Item) ([]*Field, error) {
	s.local.designatorMinimum = item.Value()
	return nil, nil
}

func cmdDesignatorMaximum(s *parserState, item Item) ([]*Field, error) {
	s.local.designatorMaximum = item.Value()
	return nil, nil
}

func cmdStringIndex(s *parserState, item Item) ([]*Field, error) {
	s.local.stringIndex = item.Value()
	return nil, nil
}

func cmdStringMinimum(s *parserState, item Item) ([]*Field, error) {
	s.local.stringMinimum = item.Value()
	return nil, nil
}

func cmdStringMaximum(s *parserState, item Item) ([]*Field, error) {
	s.local.stringMaximum = item.Value()
	return nil, nil
}

func cmdDelimiter(s *parserState, item Item) ([]*Field, error) {
	// Delimited alternative usage sets are rare; the first alternative is
	// the one the pending usage list already holds, so the markers carry no
	// extra information for us.
	return nil, nil
}

func cmdLongItem(s *parserState, item Item) ([]*Field, error) {
	// Long items are vendor specific. They are framed and skipped, never
	// interpreted.
	return nil, nil
}
