package value

import "time"

// Date wraps time.Time so the Value sum type owns its own comparable date
// kind instead of leaking time.Time into every consumer.
type Date struct {
	t time.Time
}

// NewDate builds a Date from a time.Time.
func NewDate(t time.Time) Date { return Date{t: t} }

// Time returns the underlying time.Time.
func (d Date) Time() time.Time { return d.t }

func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

// Format renders d with a strftime-like layout understood by the `format`
// filter (spec.md §4.11). Only the subset of directives the filter chain
// actually needs is supported; unknown directives pass through literally.
func (d Date) Format(layout string) string {
	return strftime(d.t, layout)
}

// ParseDate parses s per a strptime-like layout for the to-date filter.
func ParseDate(s, layout string) (Date, error) {
	t, err := strptime(s, layout)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}
