package bloodpressure

import (
	"slices"

	"github.com/etnz/bloodpressure/date"
)

// Query selects readings to list or print. The zero Query selects them all.
type Query struct {
	Range    *date.Range // days of the range are counted in the ledger location
	Statuses []Status    // keep readings having any of these statuses
	Limit    int         // keep only the most recent ones, 0 means no limit
}

// Select returns the readings matching q, most recent first.
func (l *Ledger) Select(q Query) []Reading {
	selected := make([]Reading, 0)
	for _, r := range l.List() {
		if q.Range != nil && !q.Range.Includes(r.Date, l.loc) {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, r.Status()) {
			continue
		}
		selected = append(selected, r)
		if q.Limit > 0 && len(selected) == q.Limit {
			break
		}
	}
	return selected
}
