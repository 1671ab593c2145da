package calendar

// Range is an ordered pair of optional bounds.
// A nil bound means the range is open in that direction.
type Range struct {
	From *Date `json:"from,omitempty"`
	To   *Date `json:"to,omitempty"`
}

// Between returns a closed range [from, to].
func Between(from, to Date) Range {
	return Range{From: &from, To: &to}
}

// Validate returns ErrInvertedRange when both bounds are set and From is
// after To. Open and single-day ranges are always valid.
func (r Range) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return ErrInvertedRange
	}
	return nil
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether d falls inside r, treating nil bounds as unbounded.
func (r Range) Contains(d Date) bool {
	if r.From != nil && d.Before(*r.From) {
		return false
	}
	if r.To != nil && d.After(*r.To) {
		return false
	}
	return true
}
