package period

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Key is the comparable ordinal of a period label. Labels that match no
// known format get (0,0) and order among themselves by raw label, so an
// irregular label never aborts a run, it just sorts first.
type Key struct {
	Year  int
	Month int
	Label string
}

// Less orders keys by (year, month, label).
func (k Key) Less(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Label < other.Label
}

// String renders a sortable form, e.g. "2025-11|Tháng 11/2025".
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d|%s", k.Year, k.Month, k.Label)
}

// matcher tries one period-label format and reports (year, month, ok).
type matcher func(label string, now time.Time) (int, int, bool)

var (
	isoRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	monthYearRe = regexp.MustCompile(`(\d{1,2})\s*/\s*(\d{4})`)
	looseRe     = regexp.MustCompile(`(\d{1,2}).*?(\d{4})`)
	bareRe      = regexp.MustCompile(`^(\d{1,2})$`)
)

// matchers are tried in order; the first hit wins. The loose pattern
// catches free text like "Tháng 11/2025" the way operators actually
// type it.
var matchers = []matcher{
	func(label string, _ time.Time) (int, int, bool) {
		m := isoRe.FindStringSubmatch(label)
		if m == nil {
			return 0, 0, false
		}
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return y, mo, true
	},
	func(label string, _ time.Time) (int, int, bool) {
		m := monthYearRe.FindStringSubmatch(label)
		if m == nil {
			return 0, 0, false
		}
		mo, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return y, mo, true
	},
	func(label string, _ time.Time) (int, int, bool) {
		m := looseRe.FindStringSubmatch(label)
		if m == nil {
			return 0, 0, false
		}
		mo, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return y, mo, true
	},
	func(label string, now time.Time) (int, int, bool) {
		m := bareRe.FindStringSubmatch(label)
		if m == nil {
			return 0, 0, false
		}
		mo, _ := strconv.Atoi(m[1])
		return now.Year(), mo, true
	},
}

// Parse resolves a free-text period label to a Key. now supplies the
// year for bare month numbers. Unparseable labels yield Key{0, 0,
// label} rather than an error.
func Parse(label string, now time.Time) Key {
	for _, match := range matchers {
		if y, m, ok := match(label, now); ok {
			return Key{Year: y, Month: m, Label: label}
		}
	}
	return Key{Label: label}
}
