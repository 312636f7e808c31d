package grammar

import "fmt"

// Error is one entry in the grammar-building error taxonomy of §7:
// undefined nonterminal, duplicate token, alias-of-alias, ambiguous
// shift-reduce with no precedence, reduce-reduce without state splitting
// enabled, an unresolved lane-trace conflict, and so on. Errors of this
// kind are collected rather than raised immediately, so that listings and
// debug dumps can still run to completion (§7: "sets process = false,
// which suppresses table emission but allows all listings...").
type Error struct {
	Kind    string
	State   StateNum
	Message string
}

func (e *Error) Error() string {
	if e.State >= 0 {
		return fmt.Sprintf("grammar: %s (state %d): %s", e.Kind, e.State, e.Message)
	}
	return fmt.Sprintf("grammar: %s: %s", e.Kind, e.Message)
}

func newError(kind string, state StateNum, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, State: state, Message: fmt.Sprintf(format, args...)}
}

// Errors is an accumulating list of Error, with a Process flag mirroring
// §7's `process` boolean: once any fatal grammar-building error is
// recorded, Process becomes false and table emission is suppressed.
type Errors struct {
	List    []*Error
	Process bool
}

func newErrors() *Errors { return &Errors{Process: true} }

func (es *Errors) add(e *Error) {
	es.List = append(es.List, e)
	es.Process = false
}

func (es *Errors) HasErrors() bool { return len(es.List) > 0 }

func (es *Errors) Error() string {
	if len(es.List) == 0 {
		return "grammar: no errors"
	}
	msg := fmt.Sprintf("grammar: %d error(s):\n", len(es.List))
	for _, e := range es.List {
		msg += "  " + e.Error() + "\n"
	}
	return msg
}
