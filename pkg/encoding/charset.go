// Package encoding converts element and style names from the charset an
// upstream triangulator wrote them in to UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned when a charset name is not in the IANA index.
var ErrUnknownCharset = errors.New("unknown charset")

// Decoder converts strings from a single source charset to UTF-8.
// The zero value passes strings through unchanged.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// Lookup returns a decoder for the IANA charset name (e.g. "ISO-8859-1",
// "windows-1252", "EUC-KR"). An empty name or any UTF-8 alias returns a
// pass-through decoder.
func Lookup(name string) (*Decoder, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || isUTF8(trimmed) {
		return &Decoder{name: "UTF-8"}, nil
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, trimmed)
	}
	if enc == nil {
		// Known to the index but without a Go implementation.
		return nil, fmt.Errorf("%w: %s has no decoder", ErrUnknownCharset, trimmed)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = trimmed
	}
	return &Decoder{name: canonical, enc: enc}, nil
}

// Name returns the canonical charset name.
func (d *Decoder) Name() string {
	if d == nil || d.name == "" {
		return "UTF-8"
	}
	return d.name
}

// Decode converts s to UTF-8.
// Returns s unchanged if it is already valid UTF-8 under a pass-through
// decoder, or if conversion fails.
func (d *Decoder) Decode(s string) string {
	if d == nil || d.enc == nil {
		if utf8.ValidString(s) {
			return s
		}
		return strings.ToValidUTF8(s, "�")
	}

	result, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}

// Encode converts a UTF-8 string back to the source charset.
// Returns the original bytes if conversion fails.
func (d *Decoder) Encode(s string) []byte {
	if d == nil || d.enc == nil {
		return []byte(s)
	}
	result, _, err := transform.Bytes(d.enc.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "utf-8", "utf8", "csutf8":
		return true
	}
	return false
}
