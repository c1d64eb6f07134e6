package reconcile

import (
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/model"
)

// Result partitions the joined rows: Withdrawn rows land in Removed,
// everything else in Kept. Dedup later moves duplicate rows from Kept
// to Removed as well.
type Result struct {
	Kept    []model.ReconciledRow
	Removed []model.ReconciledRow
}

// Reconcile outer-joins the prior (T1) and current (T2) snapshots on
// (customer, level), fills missing sides with zero figures, classifies
// every joined row and partitions by outcome. earliest (T0) is only
// consulted for the new-enrollee lookback and the carried-forward
// figure columns.
//
// A key appearing more than once on one side (a customer filed under
// two distributors) joins pairwise against every match on the other
// side; the dedup stage decides which of those rows survives.
func Reconcile(prior, current model.Snapshot, earliest *model.Snapshot) Result {
	priorByKey := bucketByKey(prior.Records)
	currentByKey := bucketByKey(current.Records)

	// Keys present in T1 but absent in T0 joined last period.
	newInPrior := map[model.Key]bool{}
	var earliestByCustomer map[string]model.Record
	if earliest != nil {
		earliestKeys := map[model.Key]bool{}
		earliestByCustomer = map[string]model.Record{}
		for _, r := range earliest.Records {
			earliestKeys[r.RecordKey()] = true
			if _, ok := earliestByCustomer[r.CustomerID]; !ok {
				earliestByCustomer[r.CustomerID] = r
			}
		}
		for k := range priorByKey {
			if !earliestKeys[k] {
				newInPrior[k] = true
			}
		}
	}

	// Deterministic join order: T1 keys first in file order, then
	// T2-only keys in file order. Reconciling the same snapshots twice
	// yields identical results.
	keys := make([]model.Key, 0, len(prior.Records)+len(current.Records))
	seen := map[model.Key]bool{}
	for _, r := range prior.Records {
		if k := r.RecordKey(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, r := range current.Records {
		if k := r.RecordKey(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	var res Result
	for _, k := range keys {
		for _, pair := range joinPairs(priorByKey[k], currentByKey[k]) {
			row := model.ReconciledRow{}
			if pair.current != nil {
				row.Record = *pair.current
				row.Current = figures(*pair.current)
			}
			if pair.prior != nil {
				if pair.current == nil {
					row.Record = *pair.prior
				}
				row.Prior = figures(*pair.prior)
			}
			if earliestByCustomer != nil {
				if e, ok := earliestByCustomer[k.CustomerID]; ok {
					f := figures(e)
					row.Earliest = &f
				} else {
					row.Earliest = &model.PeriodFigures{}
				}
			}

			row.Outcome, row.Rationale = classify(evalInput{
				priorQuota:       row.Prior.Quota,
				currentQuota:     row.Current.Quota,
				priorSales:       row.Prior.Sales,
				currentSales:     row.Current.Sales,
				priorThreshold:   row.Prior.Threshold,
				currentThreshold: row.Current.Threshold,
				newEnrollee:      newInPrior[k],
			})

			if row.Outcome == model.OutcomeWithdrawn {
				res.Removed = append(res.Removed, row)
			} else {
				res.Kept = append(res.Kept, row)
			}
		}
	}

	zap.L().Debug("reconcile: joined snapshots",
		zap.String("prior", prior.PeriodLabel),
		zap.String("current", current.PeriodLabel),
		zap.Int("kept", len(res.Kept)),
		zap.Int("removed", len(res.Removed)),
	)
	return res
}

type rowPair struct {
	prior   *model.Record
	current *model.Record
}

// joinPairs emulates an outer merge for one key: the cross product
// when both sides are present, otherwise each lone row paired with
// nothing.
func joinPairs(priorRows, currentRows []model.Record) []rowPair {
	if len(priorRows) == 0 && len(currentRows) == 0 {
		return nil
	}
	if len(priorRows) == 0 {
		pairs := make([]rowPair, len(currentRows))
		for i := range currentRows {
			pairs[i] = rowPair{current: &currentRows[i]}
		}
		return pairs
	}
	if len(currentRows) == 0 {
		pairs := make([]rowPair, len(priorRows))
		for i := range priorRows {
			pairs[i] = rowPair{prior: &priorRows[i]}
		}
		return pairs
	}
	pairs := make([]rowPair, 0, len(priorRows)*len(currentRows))
	for i := range priorRows {
		for j := range currentRows {
			pairs = append(pairs, rowPair{prior: &priorRows[i], current: &currentRows[j]})
		}
	}
	return pairs
}

func bucketByKey(records []model.Record) map[model.Key][]model.Record {
	m := make(map[model.Key][]model.Record, len(records))
	for _, r := range records {
		m[r.RecordKey()] = append(m[r.RecordKey()], r)
	}
	return m
}

func figures(r model.Record) model.PeriodFigures {
	return model.PeriodFigures{Quota: r.Quota, Sales: r.Sales, Threshold: r.Threshold}
}
