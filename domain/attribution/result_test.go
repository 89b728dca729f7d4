package attribution

import (
	"testing"
)

// TestNewResult_ConfidenceBounds rejects out-of-range confidence scores
func TestNewResult_ConfidenceBounds(t *testing.T) {
	if _, err := NewResult(nil, 0, 0, 0, 0, 1.2, nil); err == nil {
		t.Error("Confidence above 1 should be rejected")
	}
	if _, err := NewResult(nil, 0, 0, 0, 0, -0.1, nil); err == nil {
		t.Error("Negative confidence should be rejected")
	}
	if _, err := NewResult(nil, -5, 0, 0, 0, 0.5, nil); err == nil {
		t.Error("Negative total revenue should be rejected")
	}
}

// TestNewResult_SortsByRevenue verifies deterministic output ordering
func TestNewResult_SortsByRevenue(t *testing.T) {
	influencers := []InfluencerAttribution{
		{Username: "low", AttributedRevenue: 10},
		{Username: "high", AttributedRevenue: 90},
		{Username: "tie_b", AttributedRevenue: 50},
		{Username: "tie_a", AttributedRevenue: 50},
	}

	res, err := NewResult(influencers, 200, 3, 0, 0, 0.8, nil)
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}

	wantOrder := []string{"high", "tie_a", "tie_b", "low"}
	for i, want := range wantOrder {
		if got := res.Influencers[i].Username.String(); got != want {
			t.Errorf("Position %d: got %s, want %s", i, got, want)
		}
	}
}

// TestResult_FingerprintDeterminism verifies identical payloads hash
// identically and different payloads do not
func TestResult_FingerprintDeterminism(t *testing.T) {
	build := func(revenue float64) *Result {
		res, err := NewResult([]InfluencerAttribution{
			{Username: "mia", AttributedRevenue: revenue, AttributedOrders: 1},
		}, revenue, 1, 50, 10, 0.9, []string{"step"})
		if err != nil {
			t.Fatalf("NewResult: %v", err)
		}
		return res
	}

	a, b := build(100), build(100)
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("Identical results should share a fingerprint: %s vs %s", a.Fingerprint, b.Fingerprint)
	}
	if c := build(101); a.Fingerprint == c.Fingerprint {
		t.Error("Different revenue should change the fingerprint")
	}
}

// TestSignalBreakdown_StrongRevenue sums only strong buckets
func TestSignalBreakdown_StrongRevenue(t *testing.T) {
	b := SignalBreakdown{Temporal: 10, NewCustomer: 5, ProductMatch: 15, Anomaly: 7, Baseline: 3}
	if got := b.StrongRevenue(); got != 30 {
		t.Errorf("StrongRevenue = %f, want 30", got)
	}

	var acc SignalBreakdown
	acc.Add(b)
	acc.Add(b)
	if acc.Temporal != 20 || acc.Baseline != 6 {
		t.Errorf("Add should accumulate, got %+v", acc)
	}
}
