package prop

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Splitter breaks a COMPOUND_TEXT value into its substrings, each encoded in
// the locale codeset. The returned storage belongs to the splitter; release
// hands it back and is called exactly once by the decoder.
type Splitter interface {
	Split(raw []byte) (strs [][]byte, release func(), err error)
}

// Locale is the active character set used for COMPOUND_TEXT properties.
type Locale struct {
	// Codeset is the canonical IANA name, e.g. "UTF-8" or "ISO-8859-15".
	Codeset  string
	Encoding encoding.Encoding
	Splitter Splitter
}

// NewLocale resolves codeset through the IANA charset index. An empty codeset
// selects UTF-8.
func NewLocale(codeset string) (Locale, error) {
	enc, name, err := lookupCodeset(codeset)
	if err != nil {
		return Locale{}, err
	}
	return Locale{
		Codeset:  name,
		Encoding: enc,
		Splitter: &CompoundSplitter{Encoding: enc},
	}, nil
}

// LocaleFromEnv reads the codeset of LC_ALL, LC_CTYPE or LANG, in that order
// of precedence. Locales without a codeset, or with one this package cannot
// convert, fall back to UTF-8.
func LocaleFromEnv() Locale {
	name := ""
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			name = v
			break
		}
	}
	loc, err := NewLocale(codesetOf(name))
	if err != nil {
		loc, _ = NewLocale("")
	}
	return loc
}

// ResolveLocale returns NewLocale(codeset), or LocaleFromEnv when codeset is
// empty.
func ResolveLocale(codeset string) (Locale, error) {
	if codeset == "" {
		return LocaleFromEnv(), nil
	}
	return NewLocale(codeset)
}

// codesetOf extracts "UTF-8" from "en_US.UTF-8@euro".
func codesetOf(locale string) string {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 {
		return ""
	}
	return locale[i+1:]
}

func lookupCodeset(codeset string) (encoding.Encoding, string, error) {
	if codeset == "" || isUTF8Name(codeset) {
		return unicode.UTF8, "UTF-8", nil
	}
	enc, err := ianaindex.IANA.Encoding(codeset)
	if err != nil {
		return nil, "", fmt.Errorf("unknown codeset %q: %w", codeset, err)
	}
	if enc == nil {
		return nil, "", fmt.Errorf("codeset %q is not supported", codeset)
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		name = codeset
	}
	return enc, name, nil
}

func isUTF8Name(s string) bool {
	s = strings.ToLower(strings.ReplaceAll(s, "-", ""))
	return s == "utf8"
}

func (l Locale) utf8() bool {
	return l.Encoding == nil || l.Encoding == unicode.UTF8
}

func (l Locale) splitter() Splitter {
	if l.Splitter != nil {
		return l.Splitter
	}
	return &CompoundSplitter{Encoding: l.Encoding}
}

// toUTF8 converts one locale-encoded substring. When the converter stops
// part way, the prefix it had already accepted is converted instead.
func (l Locale) toUTF8(s []byte) (string, error) {
	if l.utf8() {
		return string(validUTF8Prefix(s)), nil
	}

	t := l.Encoding.NewDecoder()
	out, n, err := transform.Bytes(t, s)
	if err == nil {
		return string(out), nil
	}
	out, _, err = transform.Bytes(t, s[:n])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConvert, err)
	}
	return string(out), nil
}
