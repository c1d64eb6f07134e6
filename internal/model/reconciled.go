package model

// PeriodFigures holds the three per-period numbers for one period slot.
// A missing side of the outer join is represented by zero figures.
type PeriodFigures struct {
	Quota     float64
	Sales     float64
	Threshold float64
}

// ReconciledRow is the outer join of the prior (T1) and current (T2)
// snapshots for one (customer, level) key, optionally carrying the
// earliest (T0) figures when three periods were available.
type ReconciledRow struct {
	Record // identity columns, taken from T2 when present, else T1

	Prior    PeriodFigures  // T1
	Current  PeriodFigures  // T2
	Earliest *PeriodFigures // T0, nil when only two periods were loaded

	Outcome   Outcome
	Rationale string
}

// Mode selects the audience for the exported reports.
type Mode string

const (
	ModeMarketing  Mode = "MKT"
	ModeFieldSales Mode = "GSBH"
)

// ParseMode maps a CLI token to a Mode. Returns ("", false) for
// unknown tokens.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "mkt", "MKT":
		return ModeMarketing, true
	case "gsbh", "GSBH":
		return ModeFieldSales, true
	}
	return "", false
}

// Filters are the caller-supplied row filters applied after the join.
type Filters struct {
	// Outcomes restricts kept rows to these outcomes; nil means all.
	Outcomes map[Outcome]bool
	// RouteTokens keeps rows whose current route field contains at
	// least one token (case-insensitive substring); nil means all.
	RouteTokens []string
}
