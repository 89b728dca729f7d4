package engine

import (
	"time"

	"github.com/montanaflynn/stats"

	"postlift/domain/campaign"
)

// Baseline is the seasonal revenue expectation derived from historical
// orders. It answers "what would this shop have earned anyway" for a day,
// a weekday, or an hour of day.
type Baseline struct {
	DailyAverage float64     `json:"daily_average"`
	ByDayOfWeek  [7]float64  `json:"by_day_of_week"`  // expected revenue for one occurrence of that weekday
	ByHourOfDay  [24]float64 `json:"by_hour_of_day"`  // expected revenue for that hour on any single day
	LookbackDays int         `json:"lookback_days"`
	WindowStart  time.Time   `json:"window_start"`
	WindowEnd    time.Time   `json:"window_end"`
}

// EstimateBaseline derives the baseline from the trailing lookback window
// [reference − lookbackDays, reference). Buckets with no orders stay at 0:
// no smoothing or imputation, so estimates degrade honestly with sparse
// history rather than inventing revenue.
func EstimateBaseline(orders []campaign.Order, reference time.Time, lookbackDays int) Baseline {
	if lookbackDays <= 0 {
		lookbackDays = 1
	}
	start := reference.AddDate(0, 0, -lookbackDays)

	b := Baseline{
		LookbackDays: lookbackDays,
		WindowStart:  start,
		WindowEnd:    reference,
	}

	var windowTotals []float64
	for _, o := range orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(reference) {
			continue
		}
		windowTotals = append(windowTotals, o.TotalPrice)
		b.ByDayOfWeek[int(o.CreatedAt.Weekday())] += o.TotalPrice
		b.ByHourOfDay[o.CreatedAt.Hour()] += o.TotalPrice
	}

	total, _ := stats.Sum(windowTotals)
	b.DailyAverage = total / float64(lookbackDays)

	// A weekday occurs lookback/7 times inside the window; an hour occurs
	// once per day. Normalize each bucket to a single occurrence.
	weeksOfCoverage := float64(lookbackDays) / 7
	for d := range b.ByDayOfWeek {
		b.ByDayOfWeek[d] /= weeksOfCoverage
	}
	for h := range b.ByHourOfDay {
		b.ByHourOfDay[h] /= float64(lookbackDays)
	}

	return b
}

// ExpectedForHour returns the baseline expectation for one specific
// hour-bucket, blending the hour-of-day and weekday views.
func (b Baseline) ExpectedForHour(hour int, weekday time.Weekday) float64 {
	return (b.ByHourOfDay[hour] + b.ByDayOfWeek[int(weekday)]/24) / 2
}

// ExpectedForPeriod returns the baseline expectation for a whole campaign
// window of the given fractional length in days.
func (b Baseline) ExpectedForPeriod(days float64) float64 {
	if days <= 0 {
		return 0
	}
	return b.DailyAverage * days
}
