package attribution

import (
	"fmt"
	"sort"

	"postlift/domain/core"
)

// AttributedOrder records one order's contribution to a post, after the
// order's revenue has been split across all competing posts.
type AttributedOrder struct {
	OrderID    core.OrderID `json:"order_id"`
	Revenue    float64      `json:"revenue"`    // this post's share of the order total
	Share      float64      `json:"share"`      // 0.0 to 1.0 fraction of the order
	Confidence float64      `json:"confidence"` // blended signal confidence for this pairing
}

// PostAttribution is one post's share of the campaign's attributed revenue
type PostAttribution struct {
	PostID            core.PostID       `json:"post_id"`
	Username          core.Username     `json:"username"`
	Signals           []Signal          `json:"signals"`
	Orders            []AttributedOrder `json:"orders"`
	AttributedRevenue float64           `json:"attributed_revenue"`
}

// SignalBreakdown splits an influencer's attributed revenue by evidence type.
// The five buckets sum to the influencer's total attributed revenue.
type SignalBreakdown struct {
	Temporal     float64 `json:"temporal"`
	NewCustomer  float64 `json:"new_customer"`
	ProductMatch float64 `json:"product_match"`
	Anomaly      float64 `json:"anomaly"`
	Baseline     float64 `json:"baseline"`
}

// StrongRevenue returns the revenue backed by strong evidence
func (b SignalBreakdown) StrongRevenue() float64 {
	return b.Temporal + b.NewCustomer + b.ProductMatch
}

// Add accumulates another breakdown into this one
func (b *SignalBreakdown) Add(other SignalBreakdown) {
	b.Temporal += other.Temporal
	b.NewCustomer += other.NewCustomer
	b.ProductMatch += other.ProductMatch
	b.Anomaly += other.Anomaly
	b.Baseline += other.Baseline
}

// InfluencerAttribution aggregates all of one influencer's post attributions
type InfluencerAttribution struct {
	Username          core.Username     `json:"username"`
	AttributedRevenue float64           `json:"attributed_revenue"`
	AttributedOrders  float64           `json:"attributed_orders"` // fractional: orders can be split
	AverageConfidence float64           `json:"average_confidence"`
	Signals           SignalBreakdown   `json:"signals"`
	Posts             []PostAttribution `json:"posts"`
}

// Result is the engine's complete output for one campaign window
type Result struct {
	Influencers            []InfluencerAttribution `json:"influencers"`
	TotalAttributedRevenue float64                 `json:"total_attributed_revenue"`
	TotalAttributedOrders  float64                 `json:"total_attributed_orders"`
	BaselineRevenue        float64                 `json:"baseline_revenue"`
	IncrementalRevenue     float64                 `json:"incremental_revenue"`
	ConfidenceScore        float64                 `json:"confidence_score"` // 0.0 to 1.0
	Methodology            []string                `json:"methodology"`
	Fingerprint            core.ResultFingerprint  `json:"fingerprint"`
}

// NewResult assembles and validates a result. Influencers are sorted by
// attributed revenue descending so output ordering is deterministic.
func NewResult(influencers []InfluencerAttribution, totalRevenue, totalOrders, baselineRevenue, incrementalRevenue, confidence float64, methodology []string) (*Result, error) {
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence score must be in [0,1], got %f", confidence)
	}
	if totalRevenue < 0 {
		return nil, fmt.Errorf("total attributed revenue must be >= 0, got %f", totalRevenue)
	}

	sort.SliceStable(influencers, func(i, j int) bool {
		if influencers[i].AttributedRevenue != influencers[j].AttributedRevenue {
			return influencers[i].AttributedRevenue > influencers[j].AttributedRevenue
		}
		return influencers[i].Username < influencers[j].Username
	})

	r := &Result{
		Influencers:            influencers,
		TotalAttributedRevenue: totalRevenue,
		TotalAttributedOrders:  totalOrders,
		BaselineRevenue:        baselineRevenue,
		IncrementalRevenue:     incrementalRevenue,
		ConfidenceScore:        confidence,
		Methodology:            methodology,
	}
	r.Fingerprint = r.fingerprint()
	return r, nil
}

// fingerprint derives a deterministic digest of the result payload.
// Identical inputs to the engine must yield identical fingerprints.
func (r *Result) fingerprint() core.ResultFingerprint {
	var buf []byte
	buf = appendF(buf, r.TotalAttributedRevenue, r.TotalAttributedOrders, r.BaselineRevenue, r.IncrementalRevenue, r.ConfidenceScore)
	for _, inf := range r.Influencers {
		buf = append(buf, inf.Username.String()...)
		buf = appendF(buf, inf.AttributedRevenue, inf.AttributedOrders, inf.AverageConfidence)
		buf = appendF(buf, inf.Signals.Temporal, inf.Signals.NewCustomer, inf.Signals.ProductMatch, inf.Signals.Anomaly, inf.Signals.Baseline)
	}
	return core.ResultFingerprint(core.NewHash(buf))
}

func appendF(buf []byte, vals ...float64) []byte {
	for _, v := range vals {
		buf = append(buf, fmt.Sprintf("%.9f|", v)...)
	}
	return buf
}
