package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/domain/core"
)

var (
	campStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	campEnd   = time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(attribution.DefaultWeights())
	if err != nil {
		t.Fatalf("New engine: %v", err)
	}
	return e
}

func fullOrder(id string, at time.Time, total float64, email string, titles ...string) campaign.Order {
	items := make([]campaign.LineItem, len(titles))
	for i, title := range titles {
		items[i] = campaign.LineItem{Title: title, Quantity: 1, Price: total / float64(len(titles))}
	}
	return campaign.Order{
		ID:            core.OrderID(id),
		CreatedAt:     at,
		TotalPrice:    total,
		CustomerEmail: email,
		LineItems:     items,
	}
}

func mentionPost(id string, at time.Time, caption string, likes, comments int) campaign.Post {
	return campaign.Post{
		ID:             core.PostID(id),
		Timestamp:      at,
		Caption:        caption,
		LikesCount:     likes,
		CommentsCount:  comments,
		ProductMention: campaign.MentionYes,
	}
}

func influencerWith(username string, posts ...campaign.Post) campaign.Influencer {
	return campaign.Influencer{
		Username:       core.Username(username),
		FollowersCount: 10000,
		Budget:         500,
		Posts:          posts,
	}
}

// baselineHistory returns 30 days of one 50-value order per day at 14:00
// preceding the campaign start
func baselineHistory() []campaign.Order {
	var orders []campaign.Order
	for d := 1; d <= 30; d++ {
		at := campStart.AddDate(0, 0, -d).Add(14 * time.Hour)
		orders = append(orders, orderAt("hist-"+at.Format("2006-01-02"), at, 50))
	}
	return orders
}

// TestCompute_ScenarioA attributes a single clean match almost fully
func TestCompute_ScenarioA(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "New glow serum drop, link in bio", 900, 50)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(time.Hour), 100, "new@example.com", "Glow Serum"),
	)

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(res.Influencers) != 1 {
		t.Fatalf("Expected one influencer, got %d", len(res.Influencers))
	}
	inf := res.Influencers[0]
	if math.Abs(inf.AttributedRevenue-100) > 1e-6 {
		t.Errorf("Single candidate should receive the full order: got %f, want 100", inf.AttributedRevenue)
	}
	if math.Abs(inf.AttributedOrders-1) > 1e-9 {
		t.Errorf("AttributedOrders = %f, want 1", inf.AttributedOrders)
	}
	if inf.Signals.Temporal <= 0 || inf.Signals.NewCustomer <= 0 || inf.Signals.ProductMatch <= 0 {
		t.Errorf("All three strong signals should carry revenue, got %+v", inf.Signals)
	}
	breakdownTotal := inf.Signals.Temporal + inf.Signals.NewCustomer + inf.Signals.ProductMatch + inf.Signals.Anomaly + inf.Signals.Baseline
	if math.Abs(breakdownTotal-inf.AttributedRevenue) > 1e-6 {
		t.Errorf("Signal breakdown %f should sum to attributed revenue %f", breakdownTotal, inf.AttributedRevenue)
	}
}

// TestCompute_ScenarioB gives zero attribution to a post published after
// the order
func TestCompute_ScenarioB(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "New glow serum drop", 900, 50)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(-time.Hour), 100, "new@example.com", "Glow Serum"),
	)

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	inf := res.Influencers[0]
	if len(inf.Posts) != 0 {
		t.Errorf("Pre-post order should produce no post attribution, got %d", len(inf.Posts))
	}
	if inf.Signals.Temporal != 0 || inf.Signals.NewCustomer != 0 || inf.Signals.ProductMatch != 0 {
		t.Errorf("No strong signal revenue expected, got %+v", inf.Signals)
	}
	// The order falls through to the residual allocator instead.
	if inf.Signals.Baseline <= 0 {
		t.Errorf("Unmatched order should flow to the residual baseline bucket, got %f", inf.Signals.Baseline)
	}
	if want := 100 * 0.5; math.Abs(inf.Signals.Baseline-want) > 1e-6 {
		t.Errorf("Sole influencer residual = %f, want %f (full pool at the 0.5 discount)", inf.Signals.Baseline, want)
	}
}

// TestCompute_ScenarioC splits one order across two plausible posts
// proportionally to their signal scores
func TestCompute_ScenarioC(t *testing.T) {
	e := newTestEngine(t)
	nearAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	farAt := nearAt.Add(-20 * time.Hour)
	orderTime := nearAt.Add(time.Hour)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p-near", nearAt, "Glow serum is back", 900, 50)),
		influencerWith("jake", mentionPost("p-far", farAt, "My serum essentials", 400, 20)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", orderTime, 100, "new@example.com", "Glow Serum"),
	)

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	var shares, revenue float64
	byUser := map[core.Username]attribution.InfluencerAttribution{}
	for _, inf := range res.Influencers {
		byUser[inf.Username] = inf
		for _, p := range inf.Posts {
			for _, ao := range p.Orders {
				shares += ao.Share
				revenue += ao.Revenue
			}
		}
	}

	if math.Abs(shares-1) > 1e-9 {
		t.Errorf("Shares across competing posts = %f, want 1.0", shares)
	}
	if math.Abs(revenue-100) > 1e-6 {
		t.Errorf("Split revenue = %f, want 100 (conservation)", revenue)
	}
	if byUser["mia"].AttributedRevenue <= byUser["jake"].AttributedRevenue {
		t.Errorf("Closer post should win the larger share: mia=%f jake=%f",
			byUser["mia"].AttributedRevenue, byUser["jake"].AttributedRevenue)
	}
	if byUser["jake"].AttributedRevenue <= 0 {
		t.Error("Both plausible posts should receive a positive share")
	}
}

// TestCompute_ScenarioD returns an all-zero result, not an error, when no
// post qualifies and engagement is zero
func TestCompute_ScenarioD(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	unclassified := mentionPost("p1", postAt, "New serum drop", 0, 0)
	unclassified.ProductMention = campaign.MentionUnclassified
	noMention := mentionPost("p2", postAt, "Beach day", 0, 0)
	noMention.ProductMention = campaign.MentionNo

	influencers := []campaign.Influencer{influencerWith("mia", unclassified, noMention)}
	orders := []campaign.Order{
		fullOrder("o1", postAt.Add(time.Hour), 100, "new@example.com", "Glow Serum"),
	}

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute should degrade, not fail: %v", err)
	}
	if res.TotalAttributedRevenue != 0 {
		t.Errorf("TotalAttributedRevenue = %f, want 0", res.TotalAttributedRevenue)
	}
	if res.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %f, want 0", res.ConfidenceScore)
	}
}

// TestCompute_ScenarioE books anomaly evidence without changing the split
func TestCompute_ScenarioE(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock!", 900, 50)),
	}
	// History is all at 14:00, so the 13:00 bucket's expectation comes from
	// the weekday average alone and is tiny; a 500-value order sends the
	// z-score far past the threshold.
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(90*time.Minute), 500, "new@example.com", "Glow Serum"),
	)

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	inf := res.Influencers[0]
	if inf.Signals.Anomaly <= 0 {
		t.Errorf("Anomalous hour should accrue anomaly signal revenue, got %f", inf.Signals.Anomaly)
	}
	if math.Abs(inf.AttributedRevenue-500) > 1e-6 {
		t.Errorf("Anomaly bookkeeping must not change the split: got %f, want 500", inf.AttributedRevenue)
	}
}

// TestCompute_RevenueConservation verifies every attributed order's revenue
// fractions sum to its total across all competing posts
func TestCompute_RevenueConservation(t *testing.T) {
	e := newTestEngine(t)
	p1At := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	p2At := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	p3At := time.Date(2024, 6, 4, 18, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", p1At, "Glow serum morning routine", 900, 50)),
		influencerWith("jake", mentionPost("p2", p2At, "Serum and night cream combo", 400, 20)),
		influencerWith("sam", mentionPost("p3", p3At, "Lip balm season", 150, 5)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", p1At.Add(3*time.Hour), 120, "a@example.com", "Glow Serum"),
		fullOrder("o2", p2At.Add(20*time.Hour), 80, "b@example.com", "Night Cream"),
		fullOrder("o3", p3At.Add(2*time.Hour), 45, "a@example.com", "Lip Balm Duo"),
		fullOrder("o4", p3At.Add(40*time.Hour), 60, "c@example.com", "Gift Card"),
		fullOrder("o5", campStart.Add(30*time.Minute), 200, "d@example.com", "Glow Serum"), // before every post
	)

	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantTotals := map[core.OrderID]float64{"o1": 120, "o2": 80, "o3": 45, "o4": 60}
	gotTotals := map[core.OrderID]float64{}
	for _, inf := range res.Influencers {
		for _, p := range inf.Posts {
			for _, ao := range p.Orders {
				gotTotals[ao.OrderID] += ao.Revenue
			}
		}
	}
	for id, want := range wantTotals {
		got, attributed := gotTotals[id]
		if !attributed {
			continue // orders with no candidate in window flow to the residual pool
		}
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("Order %s: attributed fractions sum to %f, want %f", id, got, want)
		}
	}
	for id := range gotTotals {
		if _, known := wantTotals[id]; !known {
			t.Errorf("Unexpected attribution for order %s", id)
		}
	}
}

// TestCompute_Idempotence requires bit-identical results for identical
// inputs
func TestCompute_Idempotence(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock", 900, 50)),
		influencerWith("jake", mentionPost("p2", postAt.Add(-8*time.Hour), "Serum talk", 400, 20)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(time.Hour), 100, "a@example.com", "Glow Serum"),
		fullOrder("o2", postAt.Add(26*time.Hour), 70, "b@example.com", "Night Cream"),
	)

	first, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("First compute: %v", err)
	}
	second, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Second compute: %v", err)
	}

	if first.Fingerprint != second.Fingerprint {
		t.Errorf("Identical inputs must produce identical fingerprints: %s vs %s", first.Fingerprint, second.Fingerprint)
	}
}

// TestComputeParallel_MatchesSequential verifies the sharded variant agrees
// with the sequential engine within float tolerance and is itself
// reproducible
func TestComputeParallel_MatchesSequential(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock", 900, 50)),
		influencerWith("jake", mentionPost("p2", postAt.Add(-6*time.Hour), "Serum essentials", 400, 20)),
	}
	orders := baselineHistory()
	for i := 0; i < 40; i++ {
		orders = append(orders, fullOrder(
			"bulk-"+string(rune('a'+i%26))+"-"+time.Duration(i).String(),
			postAt.Add(time.Duration(i)*time.Hour),
			25+float64(i),
			"",
			"Glow Serum",
		))
	}

	seq, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Sequential compute: %v", err)
	}
	par, err := e.ComputeParallel(context.Background(), orders, influencers, campStart, campEnd, 4)
	if err != nil {
		t.Fatalf("Parallel compute: %v", err)
	}
	par2, err := e.ComputeParallel(context.Background(), orders, influencers, campStart, campEnd, 4)
	if err != nil {
		t.Fatalf("Parallel recompute: %v", err)
	}

	if math.Abs(seq.TotalAttributedRevenue-par.TotalAttributedRevenue) > 1e-6 {
		t.Errorf("Parallel total revenue %f diverged from sequential %f", par.TotalAttributedRevenue, seq.TotalAttributedRevenue)
	}
	if math.Abs(seq.TotalAttributedOrders-par.TotalAttributedOrders) > 1e-6 {
		t.Errorf("Parallel order count %f diverged from sequential %f", par.TotalAttributedOrders, seq.TotalAttributedOrders)
	}
	if par.Fingerprint != par2.Fingerprint {
		t.Errorf("Parallel runs with a fixed worker count must be reproducible")
	}
}

// TestCompute_ConfidenceBounds checks 0 <= confidence <= 1 across varied
// fixtures
func TestCompute_ConfidenceBounds(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	fixtures := [][]campaign.Order{
		nil,
		{fullOrder("o1", postAt.Add(time.Hour), 100, "a@example.com", "Glow Serum")},
		append(baselineHistory(),
			fullOrder("o1", postAt.Add(time.Hour), 100, "a@example.com", "Glow Serum"),
			fullOrder("o2", postAt.Add(-2*time.Hour), 300, "b@example.com", "Night Cream"),
		),
	}
	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock", 900, 50)),
	}

	for i, orders := range fixtures {
		res, err := e.Compute(orders, influencers, campStart, campEnd)
		if err != nil {
			t.Fatalf("Fixture %d: %v", i, err)
		}
		if res.ConfidenceScore < 0 || res.ConfidenceScore > 1 {
			t.Errorf("Fixture %d: confidence %f out of [0,1]", i, res.ConfidenceScore)
		}
	}
}

// TestCompute_DegenerateWindow covers end <= start
func TestCompute_DegenerateWindow(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock", 900, 50)),
	}
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(time.Hour), 100, "a@example.com", "Glow Serum"),
	)

	res, err := e.Compute(orders, influencers, campEnd, campStart)
	if err != nil {
		t.Fatalf("Degenerate window should not fail: %v", err)
	}
	if res.BaselineRevenue != 0 {
		t.Errorf("Zero-length window expects BaselineRevenue 0, got %f", res.BaselineRevenue)
	}
	if res.TotalAttributedRevenue != 0 {
		t.Errorf("No orders fall inside an empty window, got revenue %f", res.TotalAttributedRevenue)
	}
}

// TestCompute_IncrementalRevenue checks lift = actual − expected, floored
// at zero
func TestCompute_IncrementalRevenue(t *testing.T) {
	e := newTestEngine(t)
	postAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	influencers := []campaign.Influencer{
		influencerWith("mia", mentionPost("p1", postAt, "Glow serum restock", 900, 50)),
	}

	// History gives dailyAverage 50, window is 7 days: expected 350.
	orders := append(baselineHistory(),
		fullOrder("o1", postAt.Add(time.Hour), 1000, "a@example.com", "Glow Serum"),
	)
	res, err := e.Compute(orders, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.BaselineRevenue-350) > 1e-6 {
		t.Errorf("BaselineRevenue = %f, want 350", res.BaselineRevenue)
	}
	if math.Abs(res.IncrementalRevenue-650) > 1e-6 {
		t.Errorf("IncrementalRevenue = %f, want 650", res.IncrementalRevenue)
	}

	// Campaign underperforming the baseline floors at zero.
	quiet := append(baselineHistory(),
		fullOrder("o1", postAt.Add(time.Hour), 10, "a@example.com", "Glow Serum"),
	)
	res, err = e.Compute(quiet, influencers, campStart, campEnd)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.IncrementalRevenue != 0 {
		t.Errorf("Underperforming campaign should floor incremental at 0, got %f", res.IncrementalRevenue)
	}
}
