package value

import (
	"fmt"
	"strings"
	"time"
)

// strftime renders t using a small, pragmatic subset of strftime/strptime
// directives. The filter/evaluator layer only ever needs date formatting
// for capture rendering and date parsing for the to-date filter, so this
// stays intentionally narrow rather than pulling in a full C-style date
// library the ecosystem pack never surfaces.
func strftime(t time.Time, layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' || i+1 >= len(layout) {
			b.WriteByte(c)
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'm':
			fmt.Fprintf(&b, "%02d", t.Month())
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'f':
			fmt.Fprintf(&b, "%06d", t.Nanosecond()/1000)
		case 'Z':
			b.WriteString(t.Location().String())
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(layout[i])
		}
	}
	return b.String()
}

// strptime parses s with strftime's directives except %f, used by the
// to-date filter. Returns an error if s doesn't match layout or layout
// holds a directive outside %Y %m %d %H %M %S %Z %%.
func strptime(s, layout string) (time.Time, error) {
	goLayout, err := toGoLayout(layout)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(goLayout, s)
}

func toGoLayout(layout string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' || i+1 >= len(layout) {
			b.WriteByte(c)
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			b.WriteString("2006")
		case 'm':
			b.WriteString("01")
		case 'd':
			b.WriteString("02")
		case 'H':
			b.WriteString("15")
		case 'M':
			b.WriteString("04")
		case 'S':
			b.WriteString("05")
		case 'Z':
			b.WriteString("MST")
		case '%':
			b.WriteByte('%')
		default:
			return "", fmt.Errorf("value: unsupported date directive %%%c", layout[i])
		}
	}
	return b.String(), nil
}
