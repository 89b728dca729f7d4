package engine

import (
	"fmt"
	"sort"
	"time"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/domain/core"
)

// Engine estimates which posts likely caused which purchases without any
// deterministic tracking (no promo codes, no UTM links, no pixel). It is a
// pure function of its inputs: no I/O, no clock, no randomness, so
// identical inputs produce identical results.
type Engine struct {
	weights attribution.Weights
}

// New creates an engine after validating the weight configuration
func New(w attribution.Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid attribution weights: %w", err)
	}
	return &Engine{weights: w}, nil
}

// Weights returns the engine's tuning
func (e *Engine) Weights() attribution.Weights {
	return e.weights
}

// candidate is one (influencer, post) pair competing for order revenue
type candidate struct {
	username core.Username
	post     campaign.Post
}

// scoredCandidate carries one candidate's evidence for a specific order
type scoredCandidate struct {
	cand    candidate
	signals []attribution.Signal
	score   float64
}

// runContext is the setup shared by both entry points: the sorted history,
// the candidate list with its seeded accumulators, the window's orders, and
// the baseline/anomaly scan they are scored against.
type runContext struct {
	window          core.CampaignWindow
	history         []campaign.Order
	candidates      []candidate
	accs            *accumulators
	campaignOrders  []campaign.Order
	campaignRevenue float64
	baseline        Baseline
	flags           map[time.Time]HourFlag
	anomalousHours  int
}

// prepareRun computes everything that precedes per-order scoring
func (e *Engine) prepareRun(orders []campaign.Order, influencers []campaign.Influencer, start, end time.Time) runContext {
	w := e.weights
	rc := runContext{
		window:  core.NewCampaignWindow(start, end),
		history: sortedOrders(orders),
	}
	rc.candidates, rc.accs = e.prepareCandidates(influencers)

	for _, o := range rc.history {
		if rc.window.Contains(o.CreatedAt) {
			rc.campaignOrders = append(rc.campaignOrders, o)
			rc.campaignRevenue += o.TotalPrice
		}
	}

	rc.baseline = EstimateBaseline(rc.history, start, w.BaselineLookbackDays)
	rc.flags = DetectAnomalies(rc.campaignOrders, rc.baseline, w)
	for _, f := range rc.flags {
		if f.Anomalous {
			rc.anomalousHours++
		}
	}
	return rc
}

// Compute runs the full attribution pipeline for one campaign window.
// orders is the complete order history (the trailing lookback feeds the
// baseline and the novelty detector); only orders inside [start, end) are
// attributed. Malformed business data never errors: it degrades to zero
// contribution.
func (e *Engine) Compute(orders []campaign.Order, influencers []campaign.Influencer, start, end time.Time) (*attribution.Result, error) {
	rc := e.prepareRun(orders, influencers, start, end)

	var unattributed []campaign.Order
	attributedCount := 0
	for _, order := range rc.campaignOrders {
		if e.attributeOrder(order, rc.history, rc.candidates, rc.flags, rc.accs) {
			attributedCount++
		} else {
			unattributed = append(unattributed, order)
		}
	}

	residual := e.allocateResidual(unattributed, rc.accs)

	return e.aggregate(rc.accs, rc.baseline, rc.window, rc.campaignOrders, rc.campaignRevenue, aggregateStats{
		candidateCount:  len(rc.candidates),
		attributedCount: attributedCount,
		anomalousHours:  rc.anomalousHours,
		hourBuckets:     len(rc.flags),
		residual:        residual,
	})
}

// prepareCandidates flattens influencers into the ordered candidate-post
// list and seeds one accumulator per influencer. Ordering is fixed
// (username, then post timestamp, then post ID) so output is deterministic.
func (e *Engine) prepareCandidates(influencers []campaign.Influencer) ([]candidate, *accumulators) {
	infs := append([]campaign.Influencer(nil), influencers...)
	sort.SliceStable(infs, func(i, j int) bool { return infs[i].Username < infs[j].Username })

	accs := newAccumulators()
	var candidates []candidate
	for _, inf := range infs {
		accs.addInfluencer(inf)
		posts := inf.CandidatePosts()
		sort.SliceStable(posts, func(i, j int) bool {
			if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
				return posts[i].Timestamp.Before(posts[j].Timestamp)
			}
			return posts[i].ID < posts[j].ID
		})
		for _, p := range posts {
			candidates = append(candidates, candidate{username: inf.Username, post: p})
		}
	}
	return candidates, accs
}

// attributeOrder scores every candidate post against one order, splits the
// order's revenue proportionally, and books the result. Reports whether the
// order was attributed to at least one post.
func (e *Engine) attributeOrder(order campaign.Order, history []campaign.Order, candidates []candidate, flags map[time.Time]HourFlag, accs *accumulators) bool {
	w := e.weights

	isNew := IsFirstPurchase(order, history)

	var scored []scoredCandidate
	var totalScore float64
	for _, cand := range candidates {
		temporal := ClassifyTemporal(order.CreatedAt, cand.post.Timestamp, w)
		if temporal == nil {
			continue
		}
		signals := []attribution.Signal{*temporal}
		if isNew {
			signals = append(signals, NewCustomerSignal(w))
		}
		if m := MatchProducts(order.LineItems, cand.post.Caption, w.MinProductTokenLength); m.Matches {
			signals = append(signals, ProductMatchSignal(m, w))
		}

		var score float64
		for _, s := range signals {
			score += s.Contribution()
		}
		scored = append(scored, scoredCandidate{cand: cand, signals: signals, score: score})
		totalScore += score
	}

	if len(scored) == 0 {
		return false
	}

	flag, anomalous := flags[order.CreatedAt.Truncate(time.Hour)]
	anomalous = anomalous && flag.Anomalous

	for _, sc := range scored {
		// Degenerate all-zero scores fall back to an equal split so the
		// order's revenue is still conserved across its candidates.
		share := 1 / float64(len(scored))
		if totalScore > 0 {
			share = sc.score / totalScore
		}
		if share <= 0 {
			continue
		}
		revenue := order.TotalPrice * share

		signals := sc.signals
		if anomalous {
			// Bookkeeping only: the anomaly signal colors the breakdown and
			// confidence but the split above is already final.
			signals = append(signals, AnomalySignal(flag, w))
		}

		accs.book(sc.cand, order, revenue, share, signals)
	}
	return true
}

// allocateResidual distributes revenue from orders that matched no post,
// proportional to each influencer's engagement share and discounted because
// engagement share is the weakest evidence in the model. Returns the total
// allocated.
func (e *Engine) allocateResidual(unattributed []campaign.Order, accs *accumulators) float64 {
	var pool float64
	for _, o := range unattributed {
		pool += o.TotalPrice
	}
	if pool == 0 {
		return 0
	}

	var totalEngagement float64
	for _, inf := range accs.ordered {
		totalEngagement += inf.engagement
	}
	if totalEngagement == 0 {
		// No basis for allocation: leave the residual unattributed.
		return 0
	}

	var allocated float64
	for _, inf := range accs.ordered {
		alloc := pool * (inf.engagement / totalEngagement) * e.weights.ResidualDiscount
		if alloc <= 0 {
			continue
		}
		inf.signals.Baseline += alloc
		inf.revenue += alloc
		allocated += alloc
	}
	return allocated
}

type aggregateStats struct {
	candidateCount  int
	attributedCount int
	anomalousHours  int
	hourBuckets     int
	residual        float64
}

// aggregate rolls the accumulators up into the final result
func (e *Engine) aggregate(accs *accumulators, baseline Baseline, window core.CampaignWindow, campaignOrders []campaign.Order, campaignRevenue float64, st aggregateStats) (*attribution.Result, error) {
	var influencers []attribution.InfluencerAttribution
	var totalRevenue, totalOrders, strongRevenue float64
	for _, acc := range accs.ordered {
		influencers = append(influencers, acc.finalize())
		totalRevenue += acc.revenue
		totalOrders += acc.orders
		strongRevenue += acc.signals.StrongRevenue()
	}

	confidence := 0.0
	if totalRevenue > 0 {
		confidence = strongRevenue / totalRevenue
	}
	confidence = clamp01(confidence)

	baselineRevenue := baseline.ExpectedForPeriod(window.Days())
	incremental := campaignRevenue - baselineRevenue
	if incremental < 0 {
		incremental = 0
	}

	methodology := e.methodology(campaignOrders, window, st)

	return attribution.NewResult(influencers, totalRevenue, totalOrders, baselineRevenue, incremental, confidence, methodology)
}

// methodology produces the ordered, human-readable audit trail of the run
func (e *Engine) methodology(campaignOrders []campaign.Order, window core.CampaignWindow, st aggregateStats) []string {
	w := e.weights
	summary := SummarizeOrders(campaignOrders)

	lines := []string{
		fmt.Sprintf("Temporal matching: %d of %d campaign orders fell inside a %.0fh post-influence window of %d candidate posts, weighted by decay bucket.",
			st.attributedCount, len(campaignOrders), w.InfluenceWindow.Hours(), st.candidateCount),
		fmt.Sprintf("Customer novelty: first purchases corroborate a temporal match at confidence %.2f.", w.NewCustomerConfidence),
		fmt.Sprintf("Product matching: captions were fuzzy-matched against purchased line items (tokens of %d+ characters).", w.MinProductTokenLength),
		fmt.Sprintf("Anomaly detection: %d of %d hour buckets exceeded the seasonal baseline (z > %.0f).",
			st.anomalousHours, st.hourBuckets, w.AnomalyZThreshold),
	}
	if st.residual > 0 {
		lines = append(lines, fmt.Sprintf("Residual allocation: %.2f of unattributed revenue distributed by engagement share at a %.0f%% confidence discount.",
			st.residual, w.ResidualDiscount*100))
	} else {
		lines = append(lines, "Residual allocation: skipped (no unattributed revenue or no engagement to allocate against).")
	}
	lines = append(lines, fmt.Sprintf("Campaign period %s: %d orders, mean value %.2f, median %.2f.",
		window, summary.Count, summary.Mean, summary.Median))
	return lines
}

func sortedOrders(orders []campaign.Order) []campaign.Order {
	out := append([]campaign.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
