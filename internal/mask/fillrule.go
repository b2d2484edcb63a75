package mask

import (
	"fmt"
	"strings"
)

// FillRule decides which pixels of a self-intersecting loop count as inside.
// NonZero fills any point the outline winds around at least once; EvenOdd
// fills points enclosed an odd number of times.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Fills reports whether a point with the given winding number is inside.
func (r FillRule) Fills(windings int) bool {
	switch r {
	case NonZero:
		return windings != 0
	case EvenOdd:
		return windings%2 != 0
	}
	return false
}

func (r FillRule) String() string {
	switch r {
	case NonZero:
		return "nonzero"
	case EvenOdd:
		return "evenodd"
	}
	return fmt.Sprintf("FillRule(%d)", int(r))
}

// ParseFillRule accepts "nonzero" or "evenodd" in any case. An empty string
// selects NonZero.
func ParseFillRule(s string) (FillRule, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", ""))) {
	case "", "nonzero":
		return NonZero, nil
	case "evenodd":
		return EvenOdd, nil
	}
	return NonZero, fmt.Errorf("unknown fill rule %q", s)
}
