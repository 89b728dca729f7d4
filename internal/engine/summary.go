package engine

import (
	"github.com/montanaflynn/stats"

	"postlift/domain/campaign"
)

// OrderSummary holds descriptive statistics over a set of order values,
// used in methodology reporting and spreadsheet exports.
type OrderSummary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Max    float64 `json:"max"`
}

// SummarizeOrders computes descriptive statistics for the given orders.
// An empty set yields a zero summary.
func SummarizeOrders(orders []campaign.Order) OrderSummary {
	if len(orders) == 0 {
		return OrderSummary{}
	}

	values := make([]float64, len(orders))
	for i, o := range orders {
		values[i] = o.TotalPrice
	}

	total, _ := stats.Sum(values)
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	stdDev, _ := stats.StandardDeviation(values)
	max, _ := stats.Max(values)

	return OrderSummary{
		Count:  len(orders),
		Total:  total,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Max:    max,
	}
}
