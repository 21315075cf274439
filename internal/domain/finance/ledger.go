package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RecalculateRunningDebts walks records in ascending date order starting from
// seed and sets each RunningDebt to the previous balance plus the day's net.
// It returns the records whose RunningDebt changed and the closing balance.
func RecalculateRunningDebts(seed decimal.Decimal, records []*BranchDeposit) ([]*BranchDeposit, decimal.Decimal) {
	ordered := make([]*BranchDeposit, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	balance := seed
	changed := make([]*BranchDeposit, 0, len(ordered))
	for _, rec := range ordered {
		balance = balance.Add(rec.Net())
		if !rec.RunningDebt.Equal(balance) {
			rec.RunningDebt = balance
			changed = append(changed, rec)
		}
	}
	return changed, balance
}
