// Package arff reads and writes the ARFF (attribute-relation file format)
// text format: a header of attribute declarations followed by one
// comma/whitespace-separated data row per line.
package arff

import (
	"bufio"
	"io"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokEOL
	tokWord
	tokMissing
	tokChar
)

// token is one lexical unit of an ARFF stream. Quoted words carry their
// text with quotes stripped and escapes resolved; a bare unquoted "?" is a
// distinct missing-value token.
type token struct {
	kind   tokenKind
	text   string
	char   byte
	quoted bool
	line   int
}

// tokenizer is a rune-level state machine over a buffered reader.
// Whitespace and commas separate tokens, '%' comments run to end of line,
// braces are single-character tokens and end of line is significant.
type tokenizer struct {
	r      *bufio.Reader
	line   int // physical line number, including any resumed-parse offset
	pushed *token
}

// newTokenizer starts lexing at physical line offset+1, so resumed parses
// keep reporting correct line numbers.
func newTokenizer(r io.Reader, offset int) *tokenizer {
	return &tokenizer{r: bufio.NewReader(r), line: offset + 1}
}

// pushBack makes the given token the next one returned by next.
func (t *tokenizer) pushBack(tok token) {
	t.pushed = &tok
}

func (t *tokenizer) readRune() (rune, bool, error) {
	c, _, err := t.r.ReadRune()
	if err == io.EOF {
		return 0, true, nil
	}
	return c, false, err
}

func isSeparator(c rune) bool {
	return c == ',' || c == ' ' || c == '\t' || c == '\r' || (c < ' ' && c != '\n')
}

func isStructural(c rune) bool {
	return c == '{' || c == '}' || c == '%' || c == '\'' || c == '"'
}

// next returns the next token, advancing the line counter on end of line.
func (t *tokenizer) next() (token, error) {
	if t.pushed != nil {
		tok := *t.pushed
		t.pushed = nil
		return tok, nil
	}
	for {
		c, eof, err := t.readRune()
		if err != nil {
			return token{}, err
		}
		if eof {
			return token{kind: tokEOF, line: t.line}, nil
		}
		switch {
		case c == '\n':
			tok := token{kind: tokEOL, line: t.line}
			t.line++
			return tok, nil
		case isSeparator(c):
			continue
		case c == '%':
			if err := t.skipComment(); err != nil {
				return token{}, err
			}
			continue
		case c == '\'' || c == '"':
			return t.quotedWord(c)
		case c == '{' || c == '}':
			return token{kind: tokChar, char: byte(c), line: t.line}, nil
		default:
			return t.word(c)
		}
	}
}

// skipComment consumes characters up to, but not including, end of line.
func (t *tokenizer) skipComment() error {
	for {
		c, eof, err := t.readRune()
		if err != nil {
			return err
		}
		if eof {
			return nil
		}
		if c == '\n' {
			return t.r.UnreadRune()
		}
	}
}

// word accumulates an unquoted word up to the next separator, structural
// character or end of line. A bare "?" becomes the missing-value token.
func (t *tokenizer) word(first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	for {
		c, eof, err := t.readRune()
		if err != nil {
			return token{}, err
		}
		if eof {
			break
		}
		if c == '\n' || isSeparator(c) || isStructural(c) {
			if err := t.r.UnreadRune(); err != nil {
				return token{}, err
			}
			break
		}
		b.WriteRune(c)
	}
	s := b.String()
	if s == "?" {
		return token{kind: tokMissing, line: t.line}, nil
	}
	return token{kind: tokWord, text: s, line: t.line}, nil
}

// quotedWord reads a quoted value terminated by the same quote character.
// Both quote kinds yield plain word tokens; backslash escapes are resolved.
func (t *tokenizer) quotedWord(quote rune) (token, error) {
	var b strings.Builder
	escaped := false
	for {
		c, eof, err := t.readRune()
		if err != nil {
			return token{}, err
		}
		if eof || (c == '\n' && !escaped) {
			return token{}, &ParseError{Line: t.line, Msg: "unterminated quoted value"}
		}
		if escaped {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\n':
				// a quoted value continued across a physical line
				b.WriteRune(c)
				t.line++
			default:
				b.WriteRune(c)
			}
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case quote:
			return token{kind: tokWord, text: b.String(), quoted: true, line: t.line}, nil
		default:
			b.WriteRune(c)
		}
	}
}
