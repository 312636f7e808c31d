package spec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// lexer tokenizes a grammar file by hand, character class by character
// class -- grounded on vartan's spec/lexer.go's token-kind set and
// skip-whitespace/comment loop, but driven by a plain bufio.Reader
// instead of a compiled maleeni lexspec, since this tool can't bootstrap
// its own compiled scanner to read its own grammar files.
type lexer struct {
	r   *bufio.Reader
	row int
}

func newLexer(src io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(src), row: 1}
}

func (l *lexer) peekByte() (byte, bool) {
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, false
	}
	l.r.UnreadByte()
	return b, true
}

// next returns the next token, skipping whitespace and `//` line comments.
func (l *lexer) next() (*token, error) {
	for {
		b, ok := l.peekByte()
		if !ok {
			return &token{kind: tokEOF, row: l.row}, nil
		}
		switch {
		case b == '\n':
			l.r.ReadByte()
			l.row++
			continue
		case b == ' ' || b == '\t' || b == '\r':
			l.r.ReadByte()
			continue
		case b == '/':
			l.r.ReadByte()
			if nb, ok := l.peekByte(); ok && nb == '/' {
				for {
					c, err := l.r.ReadByte()
					if err != nil || c == '\n' {
						break
					}
				}
				continue
			}
			return nil, &SyntaxError{Row: l.row, Message: "unexpected '/'"}
		}
		break
	}

	b, _ := l.peekByte()
	row := l.row
	switch {
	case b == '#':
		l.r.ReadByte()
		return &token{kind: tokDirectiveMarker, row: row}, nil
	case b == ':':
		l.r.ReadByte()
		return &token{kind: tokColon, row: row}, nil
	case b == '|':
		l.r.ReadByte()
		return &token{kind: tokOr, row: row}, nil
	case b == ';':
		l.r.ReadByte()
		return &token{kind: tokSemicolon, row: row}, nil
	case b == '=':
		l.r.ReadByte()
		return &token{kind: tokAssign, row: row}, nil
	case b == ',':
		l.r.ReadByte()
		return &token{kind: tokOr, row: row}, nil // treated like a separator, reuse tokOr
	case b == '$':
		return l.lexPosition(row)
	case b == '\'':
		return l.lexTerminalPattern(row)
	case isDigit(b):
		return l.lexNumber(row)
	case isIDStart(b):
		return l.lexIdent(row)
	default:
		l.r.ReadByte()
		return &token{kind: tokInvalid, text: string(b), row: row}, nil
	}
}

func (l *lexer) lexPosition(row int) (*token, error) {
	l.r.ReadByte() // '$'
	var b strings.Builder
	for {
		c, ok := l.peekByte()
		if !ok || !isDigit(c) {
			break
		}
		l.r.ReadByte()
		b.WriteByte(c)
	}
	if b.Len() == 0 {
		return nil, &SyntaxError{Row: row, Message: "'$' must be followed by a digit"}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return nil, &SyntaxError{Row: row, Message: fmt.Sprintf("invalid position: %v", err)}
	}
	return &token{kind: tokPosition, num: n, row: row}, nil
}

// lexTerminalPattern reads a single-quoted regex pattern, honoring \' and
// \\ escapes the way vartan's terminal_open/pattern/terminal_close lexer
// mode does.
func (l *lexer) lexTerminalPattern(row int) (*token, error) {
	l.r.ReadByte() // opening '\''
	var b strings.Builder
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return nil, &SyntaxError{Row: row, Message: "unclosed terminal pattern"}
		}
		if c == '\\' {
			n, err := l.r.ReadByte()
			if err != nil {
				return nil, &SyntaxError{Row: row, Message: "incomplete escape sequence at end of input"}
			}
			if n == '\'' || n == '\\' {
				b.WriteByte(n)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(n)
			continue
		}
		if c == '\'' {
			return &token{kind: tokTerminalPattern, text: b.String(), row: row}, nil
		}
		b.WriteByte(c)
	}
}

func (l *lexer) lexNumber(row int) (*token, error) {
	var b strings.Builder
	for {
		c, ok := l.peekByte()
		if !ok || !isDigit(c) {
			break
		}
		l.r.ReadByte()
		b.WriteByte(c)
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return nil, &SyntaxError{Row: row, Message: fmt.Sprintf("invalid number: %v", err)}
	}
	return &token{kind: tokNumber, num: n, text: b.String(), row: row}, nil
}

func (l *lexer) lexIdent(row int) (*token, error) {
	var b strings.Builder
	for {
		c, ok := l.peekByte()
		if !ok || !isIDPart(c) {
			break
		}
		l.r.ReadByte()
		b.WriteByte(c)
	}
	text := b.String()
	if kw, ok := keywords[text]; ok {
		return &token{kind: kw, text: text, row: row}, nil
	}
	return &token{kind: tokID, text: text, row: row}, nil
}

var keywords = map[string]tokenKind{
	"fragment": tokKWFragment,
	"start":    tokKWStart,
	"default":  tokKWDefault,
	"install":  tokKWInstall,
	"context":  tokKWContext,
	"cost":     tokKWCost,
	"skip":     tokKWSkip,
	"options":  tokKWOptions,
}

func isDigit(b byte) bool   { return b >= '0' && b <= '9' }
func isIDStart(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isIDPart(b byte) bool  { return isIDStart(b) || isDigit(b) }
