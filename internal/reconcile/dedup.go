package reconcile

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Dedup collapses kept rows sharing one customer id down to a single
// canonical row. Duplicates show up when a customer is reassigned
// between distributors mid-period and the registry lists them under
// both. The row that sorts last by (customer id, current-period
// distributor id) wins, i.e. the most recent assignment, with a
// missing distributor id sorting first. Losers move to removed with
// their rationale replaced by the duplicate count.
func Dedup(kept []model.ReconciledRow) (deduped, removed []model.ReconciledRow) {
	order := map[string]int{}
	byCustomer := map[string][]model.ReconciledRow{}
	for i, row := range kept {
		id := row.CustomerID
		if _, ok := byCustomer[id]; !ok {
			order[id] = i
		}
		byCustomer[id] = append(byCustomer[id], row)
	}

	customers := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		customers = append(customers, id)
	}
	sort.Slice(customers, func(i, j int) bool {
		return order[customers[i]] < order[customers[j]]
	})

	for _, id := range customers {
		rows := byCustomer[id]
		if len(rows) == 1 {
			deduped = append(deduped, rows[0])
			continue
		}

		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].DistributorID < rows[j].DistributorID
		})
		winner := rows[len(rows)-1]
		deduped = append(deduped, winner)

		note := fmt.Sprintf("Trùng %d dòng, giữ NPP %s", len(rows), winner.DistributorID)
		for _, loser := range rows[:len(rows)-1] {
			loser.Rationale = note
			removed = append(removed, loser)
		}
		zap.L().Debug("reconcile: deduplicated customer",
			zap.String("customer", id),
			zap.Int("entries", len(rows)),
			zap.String("kept_distributor", winner.DistributorID),
		)
	}
	return deduped, removed
}
