package runtime

import (
	"fmt"

	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"

	"github.com/halcyon-lang/sdtgen/symbol"
	"github.com/halcyon-lang/sdtgen/tables"
)

// SemanticAction builds one reduction's value from its RHS children's
// values and the location the reduction is attributed to (§3).
type SemanticAction func(prod int, children []interface{}, loc Location) (interface{}, error)

type stackEntry struct {
	State int
	Locus Location
	Token int
	Value interface{}
}

// reduceEntry is one queued-but-not-yet-applied reduction (§4.I Parser):
// the production to apply, the location to attribute it to, and the state
// GOTO already resolved it to via the virtual stack simulation.
type reduceEntry struct {
	Prod      int
	Loc       Location
	NextState int
}

// Parser is the queued-reduce LALR interpreter of §4.I: shifts drain the
// reduce queue first; reduces only extend a virtual simulation of the
// stack until a shift, shift-reduce, or accept forces them to actually
// apply. This rollback-free deferral is what lets repair re-synthesize a
// continuation without having to undo reductions already performed.
type Parser struct {
	table    *ParserTable
	semantic SemanticAction
	messages *MessageQueue

	stack       []stackEntry
	vstates     []int // mirrors stack's states, advanced ahead by queued reduces
	reduceQueue *linkedlistqueue.Queue[reduceEntry]

	pending []*Token // tokens read ahead of the real cursor (lookahead, repair scan-ahead)
	next    func() (*Token, error)
}

func NewParser(table *ParserTable, semantic SemanticAction, messages *MessageQueue, next func() (*Token, error)) *Parser {
	start := stackEntry{State: 0}
	return &Parser{
		table:       table,
		semantic:    semantic,
		messages:    messages,
		stack:       []stackEntry{start},
		vstates:     []int{0},
		reduceQueue: linkedlistqueue.New[reduceEntry](),
		next:        next,
	}
}

func (p *Parser) peek() (*Token, error) {
	if len(p.pending) == 0 {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		p.pending = append(p.pending, t)
	}
	return p.pending[0], nil
}

func (p *Parser) peekAt(i int) (*Token, error) {
	for len(p.pending) <= i {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		p.pending = append(p.pending, t)
	}
	return p.pending[i], nil
}

func (p *Parser) popPending() *Token {
	t := p.pending[0]
	p.pending = p.pending[1:]
	return t
}

// tokenNumberFor maps a scanned token to its grammar token number, using
// the synthetic EOF terminal's reserved number (symbol.EOF, token 1) once
// the scanner reports end of input (§3 Symbol model).
func tokenNumberFor(t *Token) int {
	if t.EOF {
		return symbol.EOF.TokenNumber()
	}
	return t.TokenNum
}

// Parse runs the queued-reduce loop to acceptance, returning the sole
// remaining stack value (the start symbol's synthesized attribute).
func (p *Parser) Parse() (interface{}, error) {
	for {
		lookahead, err := p.peek()
		if err != nil {
			return nil, err
		}
		if lookahead.ScanError {
			p.messages.Add(Message{Loc: lookahead.Loc, Severity: SeverityScanError, Text: "unrecognized character"})
			p.popPending()
			continue
		}

		tok := tokenNumberFor(lookahead)
		vtop := p.vstates[len(p.vstates)-1]
		raw, err := p.table.Action(vtop, tok)
		if err != nil {
			return nil, err
		}
		shift, shiftReduce, reduce, accept, state, prod := tables.Decode(raw, p.table.Offsets)

		switch {
		case shift:
			if err := p.drain(); err != nil {
				return nil, err
			}
			p.shiftToken(lookahead, state)
			p.popPending()

		case shiftReduce:
			// §4.D's default shift-reduce cell: shift the terminal onto a
			// placeholder state (no goto state was ever generated for it),
			// then immediately queue the reduce it completes.
			if err := p.drain(); err != nil {
				return nil, err
			}
			p.shiftToken(lookahead, 0)
			p.popPending()
			p.queueReduce(prod, lookahead.Loc)

		case reduce:
			p.queueReduce(prod, lookahead.Loc)

		case accept:
			if err := p.drain(); err != nil {
				return nil, err
			}
			if len(p.stack) != 2 {
				return nil, fmt.Errorf("runtime: accept with stack depth %d, want 2", len(p.stack))
			}
			return p.stack[1].Value, nil

		default:
			if err := p.repairError(); err != nil {
				return nil, err
			}
		}
	}
}

func (p *Parser) shiftToken(t *Token, next int) {
	p.stack = append(p.stack, stackEntry{State: next, Locus: t.Loc, Token: tokenNumberFor(t), Value: t.Lexeme})
	p.vstates = append(p.vstates, next)
}

// queueReduce extends the virtual stack simulation by one reduction
// without touching the real stack (§4.I Parser).
func (p *Parser) queueReduce(prod int, loc Location) {
	n := p.table.RHSLength[prod]
	p.vstates = p.vstates[:len(p.vstates)-n]
	topState := p.vstates[len(p.vstates)-1]
	lhs := p.table.LHSToken[prod]
	raw, err := p.table.Action(topState, lhs)
	if err != nil {
		panic(err) // goto lookups never fail once the table is well-formed
	}
	_, _, _, _, next, _ := tables.Decode(raw, p.table.Offsets)
	p.vstates = append(p.vstates, next)
	p.reduceQueue.Enqueue(reduceEntry{Prod: prod, Loc: loc, NextState: next})
}

// drain actually applies every queued reduction to the real stack, in
// order, invoking the semantic action for each (§4.I Parser).
func (p *Parser) drain() error {
	for !p.reduceQueue.Empty() {
		r, _ := p.reduceQueue.Dequeue()
		n := p.table.RHSLength[r.Prod]
		children := make([]interface{}, n)
		for i := 0; i < n; i++ {
			children[i] = p.stack[len(p.stack)-n+i].Value
		}
		p.stack = p.stack[:len(p.stack)-n]
		value, err := p.semantic(r.Prod, children, r.Loc)
		if err != nil {
			return err
		}
		p.stack = append(p.stack, stackEntry{State: r.NextState, Locus: r.Loc, Token: p.table.LHSToken[r.Prod], Value: value})
	}
	return nil
}
