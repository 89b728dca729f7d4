package engine

import (
	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/domain/core"
)

// influencerAcc accumulates one influencer's attribution across all orders.
// Accumulators are private to a single Compute call; nothing survives it.
type influencerAcc struct {
	username    core.Username
	engagement  float64
	revenue     float64
	orders      float64 // fractional order count (orders can be split)
	signals     attribution.SignalBreakdown
	confidences []float64

	posts     []*attribution.PostAttribution
	postIndex map[core.PostID]*attribution.PostAttribution
}

// accumulators indexes influencer accumulators while preserving the
// deterministic insertion order used for aggregation.
type accumulators struct {
	ordered []*influencerAcc
	byUser  map[core.Username]*influencerAcc
}

func newAccumulators() *accumulators {
	return &accumulators{byUser: make(map[core.Username]*influencerAcc)}
}

func (a *accumulators) addInfluencer(inf campaign.Influencer) {
	if _, exists := a.byUser[inf.Username]; exists {
		return
	}
	acc := &influencerAcc{
		username:   inf.Username,
		engagement: inf.Engagement(),
		postIndex:  make(map[core.PostID]*attribution.PostAttribution),
	}
	a.ordered = append(a.ordered, acc)
	a.byUser[inf.Username] = acc
}

// book records one (order, post) attribution. The revenue split is already
// decided by the caller; here the evidence is translated into the
// per-signal breakdown so the five buckets always sum to booked revenue.
func (a *accumulators) book(cand candidate, order campaign.Order, revenue, share float64, signals []attribution.Signal) {
	acc := a.byUser[cand.username]
	if acc == nil {
		return
	}

	pa := acc.postIndex[cand.post.ID]
	if pa == nil {
		pa = &attribution.PostAttribution{
			PostID:   cand.post.ID,
			Username: cand.username,
		}
		acc.posts = append(acc.posts, pa)
		acc.postIndex[cand.post.ID] = pa
	}

	confidence := blendedConfidence(signals)
	pa.Signals = append(pa.Signals, signals...)
	pa.Orders = append(pa.Orders, attribution.AttributedOrder{
		OrderID:    order.ID,
		Revenue:    revenue,
		Share:      share,
		Confidence: confidence,
	})
	pa.AttributedRevenue += revenue

	acc.revenue += revenue
	acc.orders += share
	acc.confidences = append(acc.confidences, confidence)
	addBreakdown(&acc.signals, revenue, signals)
}

// finalize converts the accumulator into its public aggregate
func (acc *influencerAcc) finalize() attribution.InfluencerAttribution {
	var avgConfidence float64
	if len(acc.confidences) > 0 {
		var sum float64
		for _, c := range acc.confidences {
			sum += c
		}
		avgConfidence = sum / float64(len(acc.confidences))
	}

	posts := make([]attribution.PostAttribution, 0, len(acc.posts))
	for _, p := range acc.posts {
		posts = append(posts, *p)
	}

	return attribution.InfluencerAttribution{
		Username:          acc.username,
		AttributedRevenue: acc.revenue,
		AttributedOrders:  acc.orders,
		AverageConfidence: avgConfidence,
		Signals:           acc.signals,
		Posts:             posts,
	}
}

// merge folds another accumulator set into this one. Shards must be merged
// in a fixed order so parallel runs stay reproducible.
func (a *accumulators) merge(other *accumulators) {
	for _, otherAcc := range other.ordered {
		acc := a.byUser[otherAcc.username]
		if acc == nil {
			a.ordered = append(a.ordered, otherAcc)
			a.byUser[otherAcc.username] = otherAcc
			continue
		}
		acc.revenue += otherAcc.revenue
		acc.orders += otherAcc.orders
		acc.signals.Add(otherAcc.signals)
		acc.confidences = append(acc.confidences, otherAcc.confidences...)
		for _, p := range otherAcc.posts {
			existing := acc.postIndex[p.PostID]
			if existing == nil {
				acc.posts = append(acc.posts, p)
				acc.postIndex[p.PostID] = p
				continue
			}
			existing.Signals = append(existing.Signals, p.Signals...)
			existing.Orders = append(existing.Orders, p.Orders...)
			existing.AttributedRevenue += p.AttributedRevenue
		}
	}
}

// blendedConfidence averages signal confidences weighted by signal weight
func blendedConfidence(signals []attribution.Signal) float64 {
	var weighted, weightSum float64
	for _, s := range signals {
		weighted += s.Confidence * s.Weight
		weightSum += s.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return clamp01(weighted / weightSum)
}

// addBreakdown splits booked revenue across the pairing's signals in
// proportion to their contributions. The anomaly signal, when present,
// claims its weight-normalized portion here without having altered the
// revenue split itself.
func addBreakdown(b *attribution.SignalBreakdown, revenue float64, signals []attribution.Signal) {
	var total float64
	for _, s := range signals {
		total += s.Contribution()
	}

	for _, s := range signals {
		portion := revenue / float64(len(signals))
		if total > 0 {
			portion = revenue * s.Contribution() / total
		}
		switch s.Type {
		case attribution.SignalTemporal:
			b.Temporal += portion
		case attribution.SignalNewCustomer:
			b.NewCustomer += portion
		case attribution.SignalProductMatch:
			b.ProductMatch += portion
		case attribution.SignalAnomaly:
			b.Anomaly += portion
		case attribution.SignalBaseline:
			b.Baseline += portion
		}
	}
}
