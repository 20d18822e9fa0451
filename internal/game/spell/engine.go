package spell

import (
	"errors"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

// Cast precondition failures. Both are recoverable: the caller rests or picks a
// cheaper spell and tries again.
var (
	ErrInsufficientAP = errors.New("insufficient AP")
	ErrInsufficientMP = errors.New("insufficient MP")
)

// CastResult reports the outcome of a single cast. It is returned once and never
// persisted.
type CastResult struct {
	Success     bool  `json:"success"`
	APSpent     int   `json:"ap_spent"`
	MPSpent     int   `json:"mp_spent"`
	HexGained   int   `json:"hex_gained"`
	HexOverflow bool  `json:"hex_overflow"`
	Reason      error `json:"-"`
}

// CanCast reports whether p can pay for s.
//
// Postcondition: returns ErrInvalidSpell for negative costs, then ErrInsufficientAP
// if AP is short, then ErrInsufficientMP if MP is short, otherwise nil.
func CanCast(p resource.Pool, s Spell) error {
	if s.APCost < 0 || s.MPCost < 0 || s.HexIncrement < 0 {
		return ErrInvalidSpell
	}
	if p.CurrentAP < s.APCost {
		return ErrInsufficientAP
	}
	if p.CurrentMP < s.MPCost {
		return ErrInsufficientMP
	}
	return nil
}

// Cast spends the cost of s from p and accrues its HEX.
//
// When the accrued HEX would exceed MaxHEX it resets to 0 and HexOverflow is set;
// reaching MaxHEX exactly is not an overflow.
//
// Postcondition: on failure the returned pool equals p and result.Reason is set;
// on success AP, MP and HEX are all updated together.
func Cast(p resource.Pool, s Spell) (resource.Pool, CastResult) {
	if err := CanCast(p, s); err != nil {
		return p, CastResult{Reason: err}
	}

	next := p
	next.CurrentAP = p.CurrentAP - s.APCost
	next.CurrentMP = p.CurrentMP - s.MPCost

	res := CastResult{
		Success:   true,
		APSpent:   s.APCost,
		MPSpent:   s.MPCost,
		HexGained: s.HexIncrement,
	}
	// Compare against the headroom rather than summing, so a huge increment
	// cannot wrap around.
	if s.HexIncrement > p.MaxHEX-p.CurrentHEX {
		next.CurrentHEX = 0
		res.HexOverflow = true
	} else {
		next.CurrentHEX = p.CurrentHEX + s.HexIncrement
	}
	return next, res
}
