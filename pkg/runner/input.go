package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds one command line, in bytes.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// InputLimit is the byte budget handlers allow for one command line.
// Zero or less selects DefaultMaxInputSize.
type InputLimit int

func (l InputLimit) size() int {
	if l <= 0 {
		return DefaultMaxInputSize
	}
	return int(l)
}

// Clean rejects oversized or malformed lines whole, never truncating them, and
// drops control characters other than newline, tab and carriage return so an
// echoed command cannot drive the terminal.
func (l InputLimit) Clean(line string) (string, error) {
	if n := l.size(); len(line) > n {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(line), n)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(printable, line), nil
}

func printable(r rune) rune {
	switch {
	case r == '\n', r == '\t', r == '\r':
		return r
	case unicode.IsControl(r):
		return -1
	}
	return r
}
