package engine

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
)

// HourFlag is the anomaly verdict for one hour-bucket of the campaign
// window. Flags are computed once per bucket, then applied to every
// attribution that lands inside an anomalous hour.
type HourFlag struct {
	Hour      time.Time `json:"hour"`
	Actual    float64   `json:"actual"`
	Expected  float64   `json:"expected"`
	ZScore    float64   `json:"z_score"`
	PValue    float64   `json:"p_value"` // upper-tail probability under the modeled normal
	Anomalous bool      `json:"anomalous"`
}

// DetectAnomalies buckets the campaign orders by hour and flags buckets
// whose realized revenue significantly exceeds the seasonal expectation.
// Sigma is modeled as a fixed fraction of the expected mean rather than
// fitted from data; the p-value is reporting color, the z threshold is the
// decision rule.
func DetectAnomalies(orders []campaign.Order, baseline Baseline, w attribution.Weights) map[time.Time]HourFlag {
	realized := make(map[time.Time]float64)
	for _, o := range orders {
		realized[o.CreatedAt.Truncate(time.Hour)] += o.TotalPrice
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	flags := make(map[time.Time]HourFlag, len(realized))
	for hour, actual := range realized {
		expected := baseline.ExpectedForHour(hour.Hour(), hour.Weekday())

		flag := HourFlag{Hour: hour, Actual: actual, Expected: expected}
		if expected == 0 {
			// No baseline at all for this hour: any positive revenue is
			// anomalous by definition. The ratio stands in for a z-score.
			if actual > 0 {
				flag.ZScore = w.ZeroBaselineAnomalyRatio
				flag.Anomalous = true
			}
		} else {
			flag.ZScore = (actual - expected) / (w.AnomalySigmaFraction * expected)
			flag.Anomalous = flag.ZScore > w.AnomalyZThreshold
		}
		flag.PValue = normal.Survival(flag.ZScore)
		flags[hour] = flag
	}

	return flags
}

// AnomalySignal builds the corroborating signal appended to every post that
// received a share of an order inside an anomalous hour.
func AnomalySignal(flag HourFlag, w attribution.Weights) attribution.Signal {
	return attribution.Signal{
		Type:        attribution.SignalAnomaly,
		Confidence:  w.AnomalyConfidence,
		Weight:      w.AnomalyWeight,
		Description: anomalyDescription(flag),
	}
}

func anomalyDescription(flag HourFlag) string {
	if flag.Expected == 0 {
		return "Revenue spike in an hour with no baseline history"
	}
	return fmt.Sprintf("Revenue spike: %.0f vs expected %.0f (z=%.1f)", flag.Actual, flag.Expected, flag.ZScore)
}
