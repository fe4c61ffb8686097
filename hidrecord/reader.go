package hidrecord

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bentiss/hid-tools/hiddesc"
)

// ErrBadRecording is wrapped by all recording parse failures.
var ErrBadRecording = errors.New("malformed recording")

// Parse reads a full recording. Unknown line prefixes are an error; the
// line number is included in every failure.
func Parse(r io.Reader) (*Recording, error) {
	rec := &Recording{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	idx := 0
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseLine(rec, &idx, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rec.Devices) == 0 {
		return nil, fmt.Errorf("no device blocks: %w", ErrBadRecording)
	}
	return rec, nil
}

func parseLine(rec *Recording, idx *int, line string) error {
	if len(line) < 2 || line[1] != ':' {
		return fmt.Errorf("unrecognized line %q: %w", line, ErrBadRecording)
	}
	rest := strings.TrimSpace(line[2:])
	switch line[0] {
	case 'D':
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return fmt.Errorf("device index %q: %w", rest, ErrBadRecording)
		}
		*idx = n
		rec.device(n)
	case 'N':
		rec.device(*idx).Name = rest
	case 'P':
		rec.device(*idx).Phys = rest
	case 'I':
		fields := strings.Fields(rest)
		if len(fields) != 3 {
			return fmt.Errorf("device info %q: %w", rest, ErrBadRecording)
		}
		vals := make([]uint16, 3)
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 16, 16)
			if err != nil {
				return fmt.Errorf("device info %q: %w", rest, ErrBadRecording)
			}
			vals[i] = uint16(v)
		}
		dev := rec.device(*idx)
		dev.Bus, dev.VendorID, dev.ProductID = vals[0], vals[1], vals[2]
	case 'R':
		data, err := parseCountedBytes(rest)
		if err != nil {
			return err
		}
		rec.device(*idx).Rdesc = data
	case 'E':
		ev, err := parseEvent(rest)
		if err != nil {
			return err
		}
		ev.Device = *idx
		rec.device(*idx)
		rec.Events = append(rec.Events, ev)
	default:
		return fmt.Errorf("unrecognized line %q: %w", line, ErrBadRecording)
	}
	return nil
}

// parseCountedBytes handles "<count> <hex> <hex> ..." where count must
// match the number of bytes.
func parseCountedBytes(s string) ([]byte, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty byte list: %w", ErrBadRecording)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("byte count %q: %w", fields[0], ErrBadRecording)
	}
	data := make([]byte, 0, count)
	for _, f := range fields[1:] {
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("hex byte %q: %w", f, ErrBadRecording)
		}
		data = append(data, byte(b))
	}
	if len(data) != count {
		return nil, fmt.Errorf("declared %d bytes, got %d: %w", count, len(data), ErrBadRecording)
	}
	return data, nil
}

func parseEvent(s string) (Event, error) {
	stamp, rest, ok := strings.Cut(s, " ")
	if !ok {
		return Event{}, fmt.Errorf("event %q: %w", s, ErrBadRecording)
	}
	secStr, usecStr, ok := strings.Cut(stamp, ".")
	if !ok {
		return Event{}, fmt.Errorf("event timestamp %q: %w", stamp, ErrBadRecording)
	}
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("event timestamp %q: %w", stamp, ErrBadRecording)
	}
	usec, err := strconv.ParseInt(usecStr, 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("event timestamp %q: %w", stamp, ErrBadRecording)
	}
	data, err := parseCountedBytes(rest)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Time: time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond,
		Data: data,
	}, nil
}

// DescriptorBytes extracts raw descriptor bytes from any supported input
// form. Binary input passes through unchanged. Text input may be plain
// hex byte pairs, an "R: <count> <hex...>" recording line, or an
// annotated dump ("0x05, 0x01, // ..." with "#" comment lines); the
// forms may be mixed across lines.
func DescriptorBytes(input []byte) ([]byte, error) {
	if !isText(input) {
		return input, nil
	}
	var data []byte
	for _, line := range strings.Split(string(input), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "R:"); ok {
			chunk, err := parseCountedBytes(strings.TrimSpace(rest))
			if err != nil {
				return nil, err
			}
			data = append(data, chunk...)
			continue
		}
		for _, tok := range strings.Fields(line) {
			if strings.HasPrefix(tok, "//") {
				break
			}
			tok = strings.TrimSuffix(tok, ",")
			tok = strings.TrimPrefix(tok, "0x")
			b, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("hex byte %q: %w", tok, ErrBadRecording)
			}
			data = append(data, byte(b))
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no descriptor bytes: %w", ErrBadRecording)
	}
	return data, nil
}

// ParseDescriptor is DescriptorBytes followed by a descriptor parse.
func ParseDescriptor(input []byte) (*hiddesc.ReportDescriptor, error) {
	data, err := DescriptorBytes(input)
	if err != nil {
		return nil, err
	}
	return hiddesc.Parse(data)
}

func isText(input []byte) bool {
	for _, b := range input {
		if b >= 0x80 {
			return false
		}
		r := rune(b)
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
