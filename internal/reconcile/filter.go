package reconcile

import (
	"strings"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// ApplyFilters applies the caller's outcome and route filters to the
// kept rows. A nil outcome set means "all"; the route filter is a
// no-op when the dataset carries no route information at all.
func ApplyFilters(rows []model.ReconciledRow, filters model.Filters) []model.ReconciledRow {
	if filters.Outcomes != nil {
		var out []model.ReconciledRow
		for _, row := range rows {
			if filters.Outcomes[row.Outcome] {
				out = append(out, row)
			}
		}
		rows = out
	}

	if len(filters.RouteTokens) > 0 {
		rows = filterByRoute(rows, filters.RouteTokens)
	}
	return rows
}

// filterByRoute keeps rows whose route field contains at least one
// token, case-insensitive. The sale-day column is preferred; the
// route column is the fallback, mirroring the source extract where
// only one of the two is populated.
func filterByRoute(rows []model.ReconciledRow, tokens []string) []model.ReconciledRow {
	useSaleDay := false
	useRoute := false
	for _, row := range rows {
		if row.SaleDay != "" {
			useSaleDay = true
			break
		}
		if row.Route != "" {
			useRoute = true
		}
	}
	if !useSaleDay && !useRoute {
		return rows
	}

	lowered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	if len(lowered) == 0 {
		return rows
	}

	var out []model.ReconciledRow
	for _, row := range rows {
		field := row.Route
		if useSaleDay {
			field = row.SaleDay
		}
		field = strings.ToLower(field)
		for _, t := range lowered {
			if strings.Contains(field, t) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// FilterRegion keeps rows whose region code ("Miền") is in codes.
// wildcard keeps everything.
func FilterRegion(rows []model.ReconciledRow, codes []string, wildcard bool) []model.ReconciledRow {
	if wildcard {
		return rows
	}
	allowed := make(map[string]bool, len(codes))
	for _, c := range codes {
		allowed[c] = true
	}
	var out []model.ReconciledRow
	for _, row := range rows {
		if allowed[row.Region] {
			out = append(out, row)
		}
	}
	return out
}
