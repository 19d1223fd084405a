package nights

import (
	"errors"
	"strings"
)

// ErrEmptySet signals that no nights were selected for reprocessing. The
// driver treats this as a configuration error and stops before any
// invocation.
var ErrEmptySet = errors.New("night list is empty: nothing to reprocess")

// Set is the ordered, immutable list of nights to reprocess. Insertion order
// is processing order. Duplicate dates are kept exactly as supplied.
type Set struct {
	nights []Night
}

// NewSet parses the supplied date strings into an ordered Set. Blank entries
// are ignored; a malformed date fails the whole set rather than being
// silently dropped.
func NewSet(values []string) (Set, error) {
	out := make([]Night, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		night, err := Parse(value)
		if err != nil {
			return Set{}, err
		}
		out = append(out, night)
	}
	if len(out) == 0 {
		return Set{}, ErrEmptySet
	}
	return Set{nights: out}, nil
}

// Len reports the number of nights in the set.
func (s Set) Len() int {
	return len(s.nights)
}

// Nights returns a copy of the ordered night list.
func (s Set) Nights() []Night {
	out := make([]Night, len(s.nights))
	copy(out, s.nights)
	return out
}

// First returns the earliest-positioned night in the set.
func (s Set) First() Night {
	if len(s.nights) == 0 {
		return Night{}
	}
	return s.nights[0]
}

// Last returns the final night in the set.
func (s Set) Last() Night {
	if len(s.nights) == 0 {
		return Night{}
	}
	return s.nights[len(s.nights)-1]
}
