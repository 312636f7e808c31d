// Package symbol implements the interned terminal/nonterminal/definition
// store described as component A of the generator: stable identity,
// monotonic ordering ids, and the attributes a terminal carries (flags,
// precedence, insertion/deletion cost).
package symbol

import "fmt"

// Kind distinguishes the three identity classes a Symbol can have.
type Kind int

const (
	Terminal Kind = iota
	Nonterminal
	Definition
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Nonterminal:
		return "nonterminal"
	case Definition:
		return "definition"
	default:
		return "unknown"
	}
}

// Flag is a bit in a terminal's flag set (§3 Data Model).
type Flag uint16

const (
	FlagNone    Flag = 0
	FlagInstall Flag = 1 << iota
	FlagLeft
	FlagRight
	FlagCase
	FlagAlias
	FlagEmpty
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// TokenNumZero is reserved for ignored-regex terminal placeholders (§3).
const TokenNumZero = 0

// Symbol is an interned name plus a Kind. Identity is (Kind, name); two
// Symbols with the same Kind and name are always the same allocation, so
// they can be compared by equality directly.
type Symbol struct {
	kind  Kind
	name  string
	order int // monotonically increasing; used as the sort key in ordered sets

	// Terminal-only fields.
	tokenNum   int
	flags      Flag
	precedence int
	hasPrec    bool
	assoc      Assoc
	insertCost int
	deleteCost int
	aliasOf    *Symbol // non-nil when flags has FlagAlias

	// Nonterminal-only field: token number assigned after all terminals (§3).
	nontermTokenNum int

	// Definition-only field: the owning regex tree, set by the caller once built.
	def interface{}
}

// Assoc is a terminal's declared associativity.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

func (s *Symbol) Kind() Kind   { return s.kind }
func (s *Symbol) Name() string { return s.name }
func (s *Symbol) Order() int   { return s.order }

func (s *Symbol) IsTerminal() bool    { return s.kind == Terminal }
func (s *Symbol) IsNonterminal() bool { return s.kind == Nonterminal }
func (s *Symbol) IsDefinition() bool  { return s.kind == Definition }

// TokenNumber returns the terminal's token number, or the nonterminal's
// token number (assigned after all terminals). It panics on a Definition.
func (s *Symbol) TokenNumber() int {
	switch s.kind {
	case Terminal:
		if s.flags.Has(FlagAlias) && s.aliasOf != nil {
			return s.aliasOf.tokenNum
		}
		return s.tokenNum
	case Nonterminal:
		return s.nontermTokenNum
	default:
		panic("symbol: TokenNumber called on a Definition symbol")
	}
}

func (s *Symbol) Flags() Flag          { return s.flags }
func (s *Symbol) SetFlags(f Flag)      { s.flags = f }
func (s *Symbol) Precedence() (int, bool) { return s.precedence, s.hasPrec }
func (s *Symbol) SetPrecedence(p int)  { s.precedence = p; s.hasPrec = true }
func (s *Symbol) Associativity() Assoc { return s.assoc }
func (s *Symbol) SetAssociativity(a Assoc) { s.assoc = a }
func (s *Symbol) InsertCost() int      { return s.insertCost }
func (s *Symbol) SetInsertCost(c int)  { s.insertCost = c }
func (s *Symbol) DeleteCost() int      { return s.deleteCost }
func (s *Symbol) SetDeleteCost(c int)  { s.deleteCost = c }
func (s *Symbol) AliasOf() *Symbol     { return s.aliasOf }

// Definition returns the regex tree a Definition symbol owns.
func (s *Symbol) Definition() interface{} { return s.def }
func (s *Symbol) SetDefinition(t interface{}) { s.def = t }

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", s.kind, s.name)
}

// EOF is the synthetic end-of-file terminal, present in every grammar.
var EOF = &Symbol{kind: Terminal, name: "<eof>", order: 0, tokenNum: 1}

// Start is the synthetic augmented start nonterminal (production 1's LHS).
var Start = &Symbol{kind: Nonterminal, name: "<goal>", order: 1, nontermTokenNum: 0}
