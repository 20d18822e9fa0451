// Package dice parses and rolls damage expressions such as "2d10" or "4d8-2".
package dice

import (
	"fmt"
	"strings"
)

// Source supplies randomness to a Roller. Implementations must be safe for
// concurrent use.
type Source interface {
	// Intn returns a uniformly distributed int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Result is one evaluated roll.
//
// Invariant: Total == sum(Dice) + Modifier.
type Result struct {
	Expression string `json:"expression"`
	Dice       []int  `json:"dice"`
	Modifier   int    `json:"modifier"`
	Total      int    `json:"total"`
}

// String renders the roll as "2d6+3: [4 5] +3 = 12".
func (r Result) String() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s: [%s] %+d = %d", r.Expression, strings.Join(parts, " "), r.Modifier, r.Total)
}
