package chip8

import (
	"fmt"
	"strconv"
	"strings"
)

/// Type for scanned tokens.
///
type tokenType uint

/// Lexical assembly tokens.
///
const (
	tokenEnd tokenType = iota
	tokenComma
	tokenLabel
	tokenName
	tokenV
	tokenI
	tokenIndirect
	tokenDT
	tokenST
	tokenK
	tokenF
	tokenB
	tokenLit
)

/// A parsed, lexical token. Register tokens carry their index, literals
/// their value and names their upper-cased text.
///
type token struct {
	typ tokenType
	num int
	str string
}

/// CHIP-8 assembler token scanner over a single line.
///
type tokenScanner struct {
	bytes []byte

	// scan position
	pos int
}

/// Reads the next token from a scanner.
///
func (s *tokenScanner) scanToken() (token, error) {
	for s.pos < len(s.bytes) && s.bytes[s.pos] <= ' ' {
		s.pos++
	}

	// comments run to the end of the line
	if s.pos >= len(s.bytes) || s.bytes[s.pos] == ';' {
		return token{typ: tokenEnd}, nil
	}

	c := s.bytes[s.pos]

	switch {
	case c == ',':
		s.pos++
		return token{typ: tokenComma}, nil
	case c == '[':
		return s.scanIndirect()
	case c == '#' || c == '$':
		s.pos++
		return s.scanNumber(16)
	case c >= '0' && c <= '9':
		return s.scanNumber(10)
	case isIdent(c):
		return s.scanIdent(), nil
	}

	return token{}, fmt.Errorf("unexpected character %q", c)
}

func (s *tokenScanner) scanIndirect() (token, error) {
	start := s.pos

	for s.pos < len(s.bytes) && s.bytes[s.pos] != ']' {
		s.pos++
	}
	if s.pos == len(s.bytes) {
		return token{}, fmt.Errorf("unterminated %q", s.bytes[start:])
	}
	s.pos++

	if inner := strings.TrimSpace(string(s.bytes[start+1 : s.pos-1])); strings.ToUpper(inner) != "I" {
		return token{}, fmt.Errorf("bad indirect operand [%s]", inner)
	}

	return token{typ: tokenIndirect}, nil
}

func (s *tokenScanner) scanNumber(base int) (token, error) {
	start := s.pos

	for s.pos < len(s.bytes) && isIdent(s.bytes[s.pos]) {
		s.pos++
	}

	text := string(s.bytes[start:s.pos])

	n, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return token{}, fmt.Errorf("bad literal %q", text)
	}

	return token{typ: tokenLit, num: int(n)}, nil
}

func (s *tokenScanner) scanIdent() token {
	start := s.pos

	for s.pos < len(s.bytes) && isIdent(s.bytes[s.pos]) {
		s.pos++
	}

	name := strings.ToUpper(string(s.bytes[start:s.pos]))

	// label definition
	if s.pos < len(s.bytes) && s.bytes[s.pos] == ':' {
		s.pos++
		return token{typ: tokenLabel, str: name}
	}

	switch name {
	case "I":
		return token{typ: tokenI}
	case "DT":
		return token{typ: tokenDT}
	case "ST":
		return token{typ: tokenST}
	case "K":
		return token{typ: tokenK}
	case "F":
		return token{typ: tokenF}
	case "B":
		return token{typ: tokenB}
	}

	if len(name) == 2 && name[0] == 'V' {
		if r, err := strconv.ParseUint(name[1:], 16, 4); err == nil {
			return token{typ: tokenV, num: int(r)}
		}
	}

	return token{typ: tokenName, str: name}
}

func isIdent(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
