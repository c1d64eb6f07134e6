package model

// Outcome classifies one reconciled enrollment row.
type Outcome string

const (
	OutcomePass         Outcome = "pass"
	OutcomeFail         Outcome = "fail"
	OutcomeNotEvaluated Outcome = "not_evaluated"
	OutcomeWithdrawn    Outcome = "withdrawn"
)

// outcomeLabels are the display values written to the exported reports.
// The report vocabulary is Vietnamese; "XOA" is the legacy marker the
// DMS operators key on for withdrawal rows.
var outcomeLabels = map[Outcome]string{
	OutcomePass:         "Đạt",
	OutcomeFail:         "Không đạt",
	OutcomeNotEvaluated: "Không xét",
	OutcomeWithdrawn:    "XOA",
}

// Label returns the Vietnamese display text for the outcome.
func (o Outcome) Label() string {
	if l, ok := outcomeLabels[o]; ok {
		return l
	}
	return string(o)
}

// AllOutcomes lists the four outcomes in report order.
func AllOutcomes() []Outcome {
	return []Outcome{OutcomePass, OutcomeFail, OutcomeNotEvaluated, OutcomeWithdrawn}
}

// ParseOutcome maps a CLI token or display label to an Outcome.
// Returns ("", false) for unknown tokens.
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "dat", "pass", "Đạt":
		return OutcomePass, true
	case "khong-dat", "fail", "Không đạt":
		return OutcomeFail, true
	case "khong-xet", "not-evaluated", "Không xét":
		return OutcomeNotEvaluated, true
	case "xoa", "withdrawn", "XOA":
		return OutcomeWithdrawn, true
	}
	return "", false
}
