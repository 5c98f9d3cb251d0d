package prop

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextType restricts which encodings a text read accepts and, for STRING
// properties, which bytes survive decoding.
type TextType int

const (
	// TextAny accepts any supported encoding.
	TextAny TextType = iota
	// TextString accepts STRING and passes every byte through.
	TextString
	// TextStringXPCS accepts STRING and stops at the first byte outside the
	// X Portable Character Set (TAB, NEWLINE, 32-126).
	TextStringXPCS
	// TextStringNoCC accepts STRING and stops at the first control
	// character other than TAB and NEWLINE.
	TextStringNoCC
	// TextCompound accepts COMPOUND_TEXT.
	TextCompound
	// TextUTF8 accepts UTF8_STRING.
	TextUTF8
)

// Encoding is the source encoding a Text was decoded from.
type Encoding int

const (
	EncodingLatin1 Encoding = iota
	EncodingUTF8
	EncodingLocale
)

func (e Encoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin1"
	case EncodingUTF8:
		return "utf8"
	case EncodingLocale:
		return "locale"
	}
	return fmt.Sprintf("encoding(%d)", int(e))
}

// Text is a decoded text value.
type Text struct {
	Value  string
	Source Encoding
}

var (
	ErrEmpty     = errors.New("empty text property")
	ErrNoStrings = errors.New("text property holds no strings")
	ErrConvert   = errors.New("text conversion failed")
)

// Decode turns a raw text property into at most max strings (max < 0 means
// all of them). Either every retained substring decodes or the call fails.
func (l Locale) Decode(raw []byte, enc Encoding, typ TextType, max int) ([]Text, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	list, err := l.split(raw, enc)
	if err != nil {
		return nil, err
	}
	defer list.Release()

	strs := list.strs
	if max >= 0 && len(strs) > max {
		strs = strs[:max]
	}
	if len(strs) == 0 {
		return nil, ErrNoStrings
	}

	out := make([]Text, 0, len(strs))
	for i, s := range strs {
		v, err := l.convert(s, enc, typ)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		out = append(out, Text{Value: v, Source: enc})
	}
	return out, nil
}

func (l Locale) split(raw []byte, enc Encoding) (*strList, error) {
	switch enc {
	case EncodingLocale:
		strs, release, err := l.splitter().Split(raw)
		if err != nil {
			return nil, err
		}
		list := fromSplitter(strs, release)
		if len(list.strs) == 0 {
			list.Release()
			return nil, ErrNoStrings
		}
		return list, nil
	case EncodingLatin1, EncodingUTF8:
		return splitNUL(raw), nil
	}
	return nil, fmt.Errorf("unsupported encoding %v", enc)
}

func (l Locale) convert(s []byte, enc Encoding, typ TextType) (string, error) {
	switch enc {
	case EncodingUTF8:
		return string(validUTF8Prefix(s)), nil
	case EncodingLocale:
		return l.toUTF8(s)
	case EncodingLatin1:
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(stringPrefix(s, typ))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrConvert, err)
		}
		return string(b), nil
	}
	return "", fmt.Errorf("unsupported encoding %v", enc)
}

// validUTF8Prefix returns s up to its first invalid byte.
func validUTF8Prefix(s []byte) []byte {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRune(s[i:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		i += size
	}
	return s[:i]
}

// stringPrefix returns s up to the first byte typ does not allow.
func stringPrefix(s []byte, typ TextType) []byte {
	for i, c := range s {
		if !stringByteAllowed(c, typ) {
			return s[:i]
		}
	}
	return s
}

func stringByteAllowed(c byte, typ TextType) bool {
	if c == '\t' || c == '\n' {
		return true
	}
	switch typ {
	case TextStringNoCC:
		return c >= 0x20 && (c < 0x7f || c >= 0xa0)
	case TextStringXPCS:
		return c >= 0x20 && c <= 0x7e
	}
	return true
}
