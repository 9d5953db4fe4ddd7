package worddiff

import "fmt"

// Validate checks the positional invariants of a change sequence: spans are
// well formed, in non-decreasing position order, and non-overlapping.
func Validate(changes []Change) error {
	prevEnd := 0
	for i, c := range changes {
		switch c.Kind {
		case KindInsert, KindChange:
			if c.End <= c.Start {
				return fmt.Errorf("change[%d]: %s span [%d, %d) is empty or inverted", i, c.Kind, c.Start, c.End)
			}
		case KindDelete:
			if c.End != c.Start {
				return fmt.Errorf("change[%d]: delete must be zero width, got [%d, %d)", i, c.Start, c.End)
			}
		default:
			return fmt.Errorf("change[%d]: unknown kind %d", i, c.Kind)
		}
		if c.Start < 0 {
			return fmt.Errorf("change[%d]: negative start %d", i, c.Start)
		}
		if i > 0 && c.Start < prevEnd {
			return fmt.Errorf("change[%d]: start %d overlaps previous end %d", i, c.Start, prevEnd)
		}
		prevEnd = c.End
	}
	return nil
}
