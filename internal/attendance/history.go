package attendance

import (
	"context"
	"iter"
)

const historyPageSize = 20

type recentLister interface {
	ListRecent(ctx context.Context, employeeID string, limit, offset int) ([]Record, error)
}

// History yields at most limit records for employeeID, most recent first.
// Pages are fetched lazily; ranging over the sequence again restarts from the newest record.
// A store error is yielded once and ends the sequence.
func History(ctx context.Context, store recentLister, employeeID string, limit int) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		seen := 0
		for seen < limit {
			size := min(historyPageSize, limit-seen)
			page, err := store.ListRecent(ctx, employeeID, size, seen)
			if err != nil {
				yield(Record{}, err)
				return
			}
			for _, r := range page {
				if !yield(r, nil) {
					return
				}
			}
			seen += len(page)
			if len(page) < size {
				return
			}
		}
	}
}

// collectHistory は History を最後まで読み切る
func collectHistory(seq iter.Seq2[Record, error]) ([]Record, error) {
	var out []Record
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
