package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned by Parse for anything that is not NdS[+-M].
var ErrInvalidExpression = errors.New("invalid dice expression")

// Bounds on a parsed expression.
const (
	MaxCount = 100
	MaxSides = 1000
)

// Expression is a parsed NdS[+-M] expression.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Parse reads "d20", "2d6", "2d6+3" or "4d8-2". Surrounding space is ignored and
// the "d" is case-insensitive.
//
// Postcondition: on success 1 <= Count <= MaxCount and 2 <= Sides <= MaxSides;
// otherwise the error wraps ErrInvalidExpression.
func Parse(expr string) (Expression, error) {
	raw := strings.TrimSpace(expr)
	countStr, rest, ok := strings.Cut(strings.ToLower(raw), "d")
	if !ok {
		return Expression{}, fmt.Errorf("%w %q: missing 'd'", ErrInvalidExpression, expr)
	}

	count := 1
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 || n > MaxCount {
			return Expression{}, fmt.Errorf("%w %q: die count must be 1-%d", ErrInvalidExpression, expr, MaxCount)
		}
		count = n
	}

	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 || sides > MaxSides {
		return Expression{}, fmt.Errorf("%w %q: die sides must be 2-%d", ErrInvalidExpression, expr, MaxSides)
	}

	mod := 0
	if modStr != "" {
		if mod, err = strconv.Atoi(modStr); err != nil {
			return Expression{}, fmt.Errorf("%w %q: bad modifier", ErrInvalidExpression, expr)
		}
	}
	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: mod}, nil
}
