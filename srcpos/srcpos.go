// Package srcpos gives the parsers and the error types a common, tiny
// notion of "where in the source text" something happened.
package srcpos

import "fmt"

// Position is a 1-indexed line/column plus a 0-indexed byte offset into the
// original source text.
type Position struct {
	Line   int
	Col    int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}
