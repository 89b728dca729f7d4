package engine

import (
	"time"

	"github.com/montanaflynn/stats"

	"postlift/domain/campaign"
)

// HoldoutLift is an exploratory pre/post comparison around the first
// campaign post. It is NOT part of the production attribution model: true
// causal inference needs a randomized holdout or synthetic control, and
// this naive before/after view exists only to eyeball whether the
// multi-signal attribution is in a sane ballpark.
type HoldoutLift struct {
	PreDailyMean  float64 `json:"pre_daily_mean"`
	PostDailyMean float64 `json:"post_daily_mean"`
	Lift          float64 `json:"lift"`       // post − pre, per day
	LiftRatio     float64 `json:"lift_ratio"` // post / pre, 0 when pre is 0
}

// EstimateHoldoutLift compares mean daily revenue in the horizon before the
// anchor against the horizon after it.
func EstimateHoldoutLift(orders []campaign.Order, anchor time.Time, horizon time.Duration) HoldoutLift {
	if horizon <= 0 {
		return HoldoutLift{}
	}

	pre := dailyRevenue(orders, anchor.Add(-horizon), anchor)
	post := dailyRevenue(orders, anchor, anchor.Add(horizon))

	preMean, _ := stats.Mean(pre)
	postMean, _ := stats.Mean(post)
	if len(pre) == 0 {
		preMean = 0
	}
	if len(post) == 0 {
		postMean = 0
	}

	lift := HoldoutLift{
		PreDailyMean:  preMean,
		PostDailyMean: postMean,
		Lift:          postMean - preMean,
	}
	if preMean > 0 {
		lift.LiftRatio = postMean / preMean
	}
	return lift
}

// dailyRevenue buckets revenue per day over [start, end)
func dailyRevenue(orders []campaign.Order, start, end time.Time) []float64 {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return nil
	}
	buckets := make([]float64, days)
	for _, o := range orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		idx := int(o.CreatedAt.Sub(start).Hours() / 24)
		if idx >= 0 && idx < days {
			buckets[idx] += o.TotalPrice
		}
	}
	return buckets
}
