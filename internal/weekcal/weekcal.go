// Package weekcal implements ISO-8601 week arithmetic. Weeks travel through
// the system as "YYYY-Wnn" strings; all calendar math happens on the parsed
// Week value so that date handling never drifts between call sites.
package weekcal

import (
	"fmt"
	"time"
)

// Week identifies a single ISO week. The zero value is not a valid week.
type Week struct {
	Year int
	Num  int
}

const (
	minYear = 1
	maxYear = 9999
)

// Parse parses a "YYYY-Wnn" string. It reports ok=false for anything
// malformed instead of returning an error, because callers routinely probe
// user-supplied strings.
func Parse(s string) (Week, bool) {
	if len(s) != 8 || s[4] != '-' || s[5] != 'W' {
		return Week{}, false
	}

	year := 0
	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return Week{}, false
		}
		year = year*10 + int(c-'0')
	}

	num := 0
	for _, c := range s[6:] {
		if c < '0' || c > '9' {
			return Week{}, false
		}
		num = num*10 + int(c-'0')
	}

	w := Week{Year: year, Num: num}
	if !w.Valid() {
		return Week{}, false
	}
	return w, true
}

// String renders the wire format, e.g. "2025-W06".
func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Num)
}

// Valid reports whether the week exists on the ISO calendar.
func (w Week) Valid() bool {
	if w.Year < minYear || w.Year > maxYear {
		return false
	}
	return w.Num >= 1 && w.Num <= weeksInYear(w.Year)
}

// IsZero reports whether w is the zero value.
func (w Week) IsZero() bool {
	return w.Year == 0 && w.Num == 0
}

// FromTime returns the ISO week containing t.
func FromTime(t time.Time) Week {
	year, num := t.ISOWeek()
	return Week{Year: year, Num: num}
}

// Current returns the ISO week containing now.
func Current(now time.Time) Week {
	return FromTime(now)
}

// Monday returns the Monday that starts the week.
func (w Week) Monday() time.Time {
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, -(wd - 1))
	return week1Monday.AddDate(0, 0, (w.Num-1)*7)
}

// Add returns the week n weeks after w (n may be negative). ok=false when w
// is invalid or the result falls off the representable calendar.
func (w Week) Add(n int) (Week, bool) {
	if !w.Valid() {
		return Week{}, false
	}
	if n == 0 {
		return w, true
	}
	d := w.Monday().AddDate(0, 0, n*7)
	out := FromTime(d)
	if out.Year < minYear || out.Year > maxYear {
		return Week{}, false
	}
	return out, true
}

// Compare orders two weeks chronologically: -1 if a before b, 0 if equal,
// 1 if a after b.
func Compare(a, b Week) int {
	switch {
	case a.Year < b.Year:
		return -1
	case a.Year > b.Year:
		return 1
	case a.Num < b.Num:
		return -1
	case a.Num > b.Num:
		return 1
	default:
		return 0
	}
}

// Range returns every week from from to to inclusive. The result is empty
// when either endpoint is invalid or from is after to.
func Range(from, to Week) []Week {
	if !from.Valid() || !to.Valid() || Compare(from, to) > 0 {
		return nil
	}

	var out []Week
	cur := from
	for {
		out = append(out, cur)
		if Compare(cur, to) == 0 {
			return out
		}
		next, ok := cur.Add(1)
		if !ok {
			return out
		}
		cur = next
	}
}

// MarshalJSON implements json.Marshaler using the wire format.
func (w Week) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Week) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid week value %s", data)
	}
	parsed, ok := Parse(string(data[1 : len(data)-1]))
	if !ok {
		return fmt.Errorf("invalid week value %s", data)
	}
	*w = parsed
	return nil
}

func weeksInYear(year int) int {
	// December 28th is always inside the last ISO week of its year.
	_, num := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return num
}
