package stats

import (
	"sort"

	"github.com/verte-zerg/specklerr/internal/model"
)

// RankByRMSE returns up to n series labels ordered by ascending RMSE.
func RankByRMSE(collection model.SeriesCollection, n int) []string {
	if n <= 0 || collection.Len() == 0 {
		return nil
	}
	type item struct {
		label string
		order int
		rmse  float64
	}
	items := make([]item, 0, collection.Len())
	for i, s := range collection.Series {
		items = append(items, item{
			label: s.Label,
			order: i,
			rmse:  s.Summary.RMSE,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].rmse == items[j].rmse {
			return items[i].order < items[j].order
		}
		return items[i].rmse < items[j].rmse
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].label)
	}
	return out
}
