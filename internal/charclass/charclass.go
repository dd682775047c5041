// Package charclass implements the XML 1.0 Name/NameStartChar character
// classes used throughout sax, dom and xpath, plus the small "blank"
// predicate the SAX tokeniser uses to skip insignificant whitespace.
package charclass

import "unicode"

// IsBlank reports whether b is XML whitespace: space, tab, CR or LF.
func IsBlank(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// FirstNameByte reports whether b, taken alone, may start an XML Name.
// It only covers the ASCII subset; FirstNameRune must be consulted for
// multi-byte UTF-8 sequences.
func FirstNameByte(b byte) bool {
	return b == '_' || b == ':' ||
		(b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// NameByte reports whether b, taken alone, may continue an XML Name.
func NameByte(b byte) bool {
	return FirstNameByte(b) || (b >= '0' && b <= '9') || b == '.' || b == '-'
}

// FirstNameRune reports whether r may start an XML Name, including the
// "selected high-range Unicode classes" spec.md §3 calls for: above
// ASCII, Unicode letters and Other_ID_Start characters. Combining marks
// are accepted only after the first character (see NameRune).
func FirstNameRune(r rune) bool {
	if r < utf8RuneSelf {
		return FirstNameByte(byte(r))
	}
	return unicode.IsLetter(r) || unicode.Is(unicode.Other_ID_Start, r)
}

// NameRune reports whether r may continue an XML Name: FirstNameRune, a
// digit, '.', '-', or U+00B7 (middle dot, explicitly called out by XML 1.0
// NameChar and by spec.md §3 invariant 1).
func NameRune(r rune) bool {
	if r < utf8RuneSelf {
		return NameByte(byte(r))
	}
	if r == middleDot {
		return true
	}
	return FirstNameRune(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

const (
	utf8RuneSelf = 0x80
	middleDot    = 0x00B7
)

// ValidName reports whether s is a non-empty, well-formed XML Name.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	first := true
	for _, r := range s {
		if first {
			if !FirstNameRune(r) {
				return false
			}
			first = false
			continue
		}
		if !NameRune(r) {
			return false
		}
	}
	return true
}
