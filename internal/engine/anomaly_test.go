package engine

import (
	"testing"
	"time"

	"postlift/domain/campaign"
)

// TestDetectAnomalies_ZeroBaseline verifies any positive revenue in an hour
// with no baseline history is flagged
func TestDetectAnomalies_ZeroBaseline(t *testing.T) {
	at := time.Date(2024, 6, 3, 3, 15, 0, 0, time.UTC) // 03:00 bucket, no history
	orders := []campaign.Order{orderAt("o1", at, 25)}

	flags := DetectAnomalies(orders, Baseline{}, testWeights)
	flag, ok := flags[at.Truncate(time.Hour)]
	if !ok {
		t.Fatal("Expected a flag for the order's hour bucket")
	}
	if !flag.Anomalous {
		t.Error("Positive revenue on a zero baseline should be anomalous")
	}
	if flag.ZScore != testWeights.ZeroBaselineAnomalyRatio {
		t.Errorf("Zero-baseline z stand-in = %f, want %f", flag.ZScore, testWeights.ZeroBaselineAnomalyRatio)
	}
}

// TestDetectAnomalies_SpikeFlagged verifies the z-score rule with sigma
// modeled as half the expected mean
func TestDetectAnomalies_SpikeFlagged(t *testing.T) {
	at := time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC) // Monday 14:00 bucket

	var b Baseline
	b.ByHourOfDay[14] = 40
	b.ByDayOfWeek[int(time.Monday)] = 960 // /24 = 40; expected = (40+40)/2 = 40

	// z = (actual − 40) / 20; actual 100 gives z = 3 > 2
	spike := []campaign.Order{orderAt("spike", at, 100)}
	flags := DetectAnomalies(spike, b, testWeights)
	flag := flags[at.Truncate(time.Hour)]
	if !flag.Anomalous {
		t.Errorf("Revenue 100 vs expected 40 (z=%.1f) should be anomalous", flag.ZScore)
	}
	if flag.PValue >= 0.05 {
		t.Errorf("z=3 should carry a small tail probability, got %f", flag.PValue)
	}

	// actual 60 gives z = 1, not anomalous
	normal := []campaign.Order{orderAt("normal", at, 60)}
	flags = DetectAnomalies(normal, b, testWeights)
	if flags[at.Truncate(time.Hour)].Anomalous {
		t.Error("Revenue 60 vs expected 40 (z=1) should not be anomalous")
	}
}

// TestDetectAnomalies_BucketsByHour verifies revenue accumulates per
// hour-bucket before testing
func TestDetectAnomalies_BucketsByHour(t *testing.T) {
	hour := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

	var b Baseline
	b.ByHourOfDay[14] = 40
	b.ByDayOfWeek[int(time.Monday)] = 960

	// Three 40-value orders inside one hour: bucket total 120, z = 4
	orders := []campaign.Order{
		orderAt("a", hour.Add(5*time.Minute), 40),
		orderAt("b", hour.Add(25*time.Minute), 40),
		orderAt("c", hour.Add(50*time.Minute), 40),
	}
	flags := DetectAnomalies(orders, b, testWeights)
	flag := flags[hour]
	if flag.Actual != 120 {
		t.Errorf("Bucket should accumulate to 120, got %f", flag.Actual)
	}
	if !flag.Anomalous {
		t.Errorf("Bucket total 120 vs expected 40 should be anomalous, z=%f", flag.ZScore)
	}
}
