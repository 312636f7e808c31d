package spec

import (
	"io"
)

// parser is a hand-written recursive-descent reader for the grammar file
// grammar itself, grounded on vartan's spec/parser.go's directive/
// production-alternative structure but simplified to this tool's own
// `name = 'pattern' ;` / `name : alt | alt ... ;` surface syntax (the
// token after the leading name, `=` for a terminal definition or `:` for
// a production rule, tells the two apart with one token of lookahead).
type parser struct {
	lex  *lexer
	tok  *token
	peek *token
}

func newParser(src io.Reader) *parser {
	return &parser{lex: newLexer(src)}
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok, p.peek = p.peek, nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) lookahead() (*token, error) {
	if p.peek == nil {
		t, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		p.peek = t
	}
	return p.peek, nil
}

func (p *parser) expect(k tokenKind, what string) error {
	if p.tok.kind != k {
		return &SyntaxError{Row: p.tok.row, Message: "expected " + what}
	}
	return nil
}

// Parse reads a whole grammar file into a *File.
func Parse(src io.Reader) (*File, error) {
	p := newParser(src)
	if err := p.advance(); err != nil {
		return nil, err
	}
	f := &File{}
	for p.tok.kind != tokEOF {
		if err := p.parseItem(f); err != nil {
			return nil, err
		}
	}
	if len(f.Rules) == 0 {
		return nil, &SyntaxError{Row: p.tok.row, Message: "a grammar must have at least one production"}
	}
	return f, nil
}

func (p *parser) parseItem(f *File) error {
	switch p.tok.kind {
	case tokDirectiveMarker:
		return p.parseDirective(f)
	case tokKWFragment:
		return p.parseFragment(f)
	case tokID:
		return p.parseNameHeaded(f)
	default:
		return &SyntaxError{Row: p.tok.row, Message: "expected a directive, fragment, terminal, or rule"}
	}
}

func (p *parser) parseDirective(f *File) error {
	row := p.tok.row
	if err := p.advance(); err != nil { // consume '#'
		return err
	}
	switch p.tok.kind {
	case tokKWStart:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(tokID, "a nonterminal name after #start"); err != nil {
			return err
		}
		f.Start = p.tok.text
		if err := p.advance(); err != nil {
			return err
		}
	case tokKWContext:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(tokNumber, "a number after #context"); err != nil {
			return err
		}
		f.Context = p.tok.num
		if err := p.advance(); err != nil {
			return err
		}
	case tokKWCost:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(tokNumber, "a number after #cost"); err != nil {
			return err
		}
		f.Cost = p.tok.num
		if err := p.advance(); err != nil {
			return err
		}
	case tokKWInstall:
		names, err := p.parseNameList()
		if err != nil {
			return err
		}
		f.Installs = append(f.Installs, names...)
	case tokKWSkip:
		names, err := p.parseNameList()
		if err != nil {
			return err
		}
		f.Skips = append(f.Skips, names...)
	case tokKWOptions:
		names, err := p.parseNameList()
		if err != nil {
			return err
		}
		f.Options = append(f.Options, names...)
	default:
		return &SyntaxError{Row: row, Message: "unknown directive"}
	}
	if err := p.expect(tokSemicolon, "';' at the end of a directive"); err != nil {
		return err
	}
	return p.advance()
}

// parseNameList consumes `ID (',' ID)*` after a directive keyword already
// current, without consuming the trailing ';'.
func (p *parser) parseNameList() ([]string, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var names []string
	for {
		if err := p.expect(tokID, "a name"); err != nil {
			return nil, err
		}
		names = append(names, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokOr { // tokOr doubles as the ',' separator
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (p *parser) parseFragment(f *File) error {
	if err := p.advance(); err != nil { // consume 'fragment'
		return err
	}
	def, err := p.parseTerminalDef()
	if err != nil {
		return err
	}
	f.Fragments = append(f.Fragments, def)
	return nil
}

// parseNameHeaded disambiguates `name = 'pattern' ;` (terminal) from
// `name : alt | alt ... ;` (rule) by one token of lookahead past the name.
func (p *parser) parseNameHeaded(f *File) error {
	name := p.tok.text
	row := p.tok.row
	next, err := p.lookahead()
	if err != nil {
		return err
	}
	switch next.kind {
	case tokAssign:
		if err := p.advance(); err != nil { // consume name, land on '='
			return err
		}
		def, err := p.parseTerminalDefBody(name, row)
		if err != nil {
			return err
		}
		f.Terminals = append(f.Terminals, def)
		return nil
	case tokColon:
		rule, err := p.parseRule()
		if err != nil {
			return err
		}
		f.Rules = append(f.Rules, rule)
		return nil
	default:
		return &SyntaxError{Row: row, Message: "expected '=' or ':' after a name"}
	}
}

func (p *parser) parseTerminalDef() (*TerminalDef, error) {
	if err := p.expect(tokID, "a terminal name"); err != nil {
		return nil, err
	}
	name := p.tok.text
	row := p.tok.row
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseTerminalDefBody(name, row)
}

// parseTerminalDefBody expects the current token to be '=' and consumes
// through the trailing ';'.
func (p *parser) parseTerminalDefBody(name string, row int) (*TerminalDef, error) {
	if err := p.expect(tokAssign, "'=' after a terminal name"); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokTerminalPattern, "a quoted pattern"); err != nil {
		return nil, err
	}
	pattern := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokSemicolon, "';' after a terminal definition"); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &TerminalDef{Name: name, Pattern: pattern, Row: row}, nil
}

func (p *parser) parseRule() (*Rule, error) {
	name := p.tok.text
	row := p.tok.row
	if err := p.advance(); err != nil { // consume name
		return nil, err
	}
	if err := p.expect(tokColon, "':' after a rule name"); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var alts [][]RHSSymbol
	for {
		alt, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
		if p.tok.kind != tokOr {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokSemicolon, "';' at the end of a rule"); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &Rule{Name: name, Alts: alts, Row: row}, nil
}

func (p *parser) parseAlt() ([]RHSSymbol, error) {
	var syms []RHSSymbol
	for {
		switch p.tok.kind {
		case tokID:
			syms = append(syms, RHSSymbol{Name: p.tok.text, Row: p.tok.row})
			if err := p.advance(); err != nil {
				return nil, err
			}
		case tokTerminalPattern:
			syms = append(syms, RHSSymbol{Name: p.tok.text, Literal: true, Row: p.tok.row})
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return syms, nil
		}
	}
}
