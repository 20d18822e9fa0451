package dice

import (
	"crypto/rand"
	"math/big"

	"go.uber.org/zap"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source { return cryptoSource{} }

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// Roll evaluates e with src.
//
// Postcondition: len(Dice) == e.Count and every die is in [1, e.Sides].
func Roll(e Expression, src Source) Result {
	r := Result{Expression: e.Raw, Dice: make([]int, e.Count), Modifier: e.Modifier, Total: e.Modifier}
	for i := range r.Dice {
		r.Dice[i] = src.Intn(e.Sides) + 1
		r.Total += r.Dice[i]
	}
	return r
}

// Roller rolls expressions and logs every roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollExpr parses expr and rolls it.
func (r *Roller) RollExpr(expr string) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	res := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total),
	)
	return res, nil
}
