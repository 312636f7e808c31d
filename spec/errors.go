package spec

import "fmt"

// SyntaxError is a grammar-file parse failure pinned to a source line
// (§6's grammar-input surface; the input-file parser itself is outside
// this tool's core, but it still needs one clear error shape).
type SyntaxError struct {
	Row     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: syntax error: %s", e.Row, e.Message)
}

func newSyntaxError(row int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Row: row, Message: fmt.Sprintf(format, args...)}
}
