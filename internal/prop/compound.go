package prop

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrCompoundText reports a COMPOUND_TEXT value using a character set this
// splitter does not know.
var ErrCompoundText = errors.New("unsupported COMPOUND_TEXT sequence")

const (
	esc = 0x1b
	csi = 0x9b
)

var compoundBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// CompoundSplitter decodes the common subset of COMPOUND_TEXT: ASCII in GL,
// the ISO-8859-1 right half in GR, and UTF-8 extended segments. Direction
// sequences are skipped. Output substrings are re-encoded in Encoding; runes
// the codeset cannot represent become its replacement character.
type CompoundSplitter struct {
	Encoding encoding.Encoding
}

// Split implements Splitter.
func (s *CompoundSplitter) Split(raw []byte) ([][]byte, func(), error) {
	buf := compoundBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	release := func() {
		buf.Reset()
		compoundBuffers.Put(buf)
	}

	var bounds []int
	var seg []rune
	utf8Segment := false

	flush := func() error {
		if err := s.encode(buf, seg); err != nil {
			return err
		}
		bounds = append(bounds, buf.Len())
		seg = seg[:0]
		return nil
	}

	for i := 0; i < len(raw); {
		c := raw[i]
		switch {
		case c == 0:
			if err := flush(); err != nil {
				release()
				return nil, nil, err
			}
			i++
		case c == esc:
			n, mode, err := escape(raw[i:])
			if err != nil {
				release()
				return nil, nil, err
			}
			switch mode {
			case escUTF8Begin:
				utf8Segment = true
			case escUTF8End:
				utf8Segment = false
			}
			i += n
		case utf8Segment:
			r, size := utf8.DecodeRune(raw[i:])
			if r == utf8.RuneError && size <= 1 {
				release()
				return nil, nil, fmt.Errorf("%w: invalid UTF-8 segment", ErrCompoundText)
			}
			seg = append(seg, r)
			i += size
		case c == csi:
			i += skipDirection(raw[i:])
		case c == '\t' || c == '\n' || (c >= 0x20 && c <= 0x7e) || c >= 0xa0:
			// GL is ASCII and GR is the Latin-1 right half, so the byte
			// value is the code point.
			seg = append(seg, rune(c))
			i++
		default:
			release()
			return nil, nil, fmt.Errorf("%w: byte 0x%02x", ErrCompoundText, c)
		}
	}
	if len(seg) > 0 || len(bounds) == 0 || raw[len(raw)-1] != 0 {
		if err := flush(); err != nil {
			release()
			return nil, nil, err
		}
	}

	out := make([][]byte, len(bounds))
	data := buf.Bytes()
	start := 0
	for i, end := range bounds {
		out[i] = data[start:end:end]
		start = end
	}
	return out, release, nil
}

func (s *CompoundSplitter) encode(buf *bytes.Buffer, seg []rune) error {
	if s.Encoding == nil || s.Encoding == unicode.UTF8 {
		for _, r := range seg {
			buf.WriteRune(r)
		}
		return nil
	}
	enc := encoding.ReplaceUnsupported(s.Encoding.NewEncoder())
	b, err := enc.String(string(seg))
	if err != nil {
		return fmt.Errorf("failed to encode for locale: %w", err)
	}
	buf.WriteString(b)
	return nil
}

type escMode int

const (
	escDesignate escMode = iota
	escUTF8Begin
	escUTF8End
)

// escape parses one escape sequence and returns its length.
func escape(b []byte) (int, escMode, error) {
	if len(b) < 3 {
		return 0, 0, fmt.Errorf("%w: truncated escape", ErrCompoundText)
	}
	switch {
	case b[1] == '(' && b[2] == 'B':
		return 3, escDesignate, nil
	case b[1] == '-' && b[2] == 'A':
		return 3, escDesignate, nil
	case b[1] == '%' && b[2] == 'G':
		return 3, escUTF8Begin, nil
	case b[1] == '%' && b[2] == '@':
		return 3, escUTF8End, nil
	}
	return 0, 0, fmt.Errorf("%w: escape %q", ErrCompoundText, b[1:3])
}

// skipDirection returns the length of a CSI direction sequence: CSI 1 ],
// CSI 2 ] or CSI ].
func skipDirection(b []byte) int {
	for i := 1; i < len(b) && i < 3; i++ {
		if b[i] == ']' {
			return i + 1
		}
	}
	return 1
}
