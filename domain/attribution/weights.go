package attribution

import (
	"fmt"
	"time"
)

// DecayBucket is one discrete time-since-post interval with a fixed weight.
// Buckets, not a continuous curve, keep the model auditable: a reviewer can
// read the table and recompute any score by hand.
type DecayBucket struct {
	MaxHoursAfter float64 `json:"max_hours_after"` // upper bound, exclusive with the next bucket's
	Weight        float64 `json:"weight"`
}

// Weights holds every tuning knob of the attribution model. All values are
// literal heuristics, not fitted parameters; tests sweep them without
// touching algorithm code.
type Weights struct {
	// Temporal classifier
	InfluenceWindow time.Duration `json:"influence_window"`
	DecayBuckets    []DecayBucket `json:"decay_buckets"`

	// Corroborating signals
	NewCustomerConfidence  float64 `json:"new_customer_confidence"`
	NewCustomerWeight      float64 `json:"new_customer_weight"`
	ProductMatchWeight     float64 `json:"product_match_weight"`
	AnomalyConfidence      float64 `json:"anomaly_confidence"`
	AnomalyWeight          float64 `json:"anomaly_weight"`
	MinProductTokenLength  int     `json:"min_product_token_length"`

	// Anomaly detector. Sigma is modeled as a fraction of the expected mean
	// rather than fitted; the zero-baseline multiplier guards hours with no
	// history at all.
	AnomalySigmaFraction     float64 `json:"anomaly_sigma_fraction"`
	AnomalyZThreshold        float64 `json:"anomaly_z_threshold"`
	ZeroBaselineAnomalyRatio float64 `json:"zero_baseline_anomaly_ratio"`

	// Residual allocation and baseline
	ResidualDiscount     float64 `json:"residual_discount"`
	BaselineLookbackDays int     `json:"baseline_lookback_days"`
}

// DefaultWeights returns the production tuning of the model
func DefaultWeights() Weights {
	return Weights{
		InfluenceWindow: 48 * time.Hour,
		DecayBuckets: []DecayBucket{
			{MaxHoursAfter: 2, Weight: 0.35},
			{MaxHoursAfter: 6, Weight: 0.25},
			{MaxHoursAfter: 24, Weight: 0.15},
			{MaxHoursAfter: 48, Weight: 0.08},
		},
		NewCustomerConfidence:    0.8,
		NewCustomerWeight:        0.25,
		ProductMatchWeight:       0.30,
		AnomalyConfidence:        0.7,
		AnomalyWeight:            0.20,
		MinProductTokenLength:    4,
		AnomalySigmaFraction:     0.5,
		AnomalyZThreshold:        2,
		ZeroBaselineAnomalyRatio: 10,
		ResidualDiscount:         0.5,
		BaselineLookbackDays:     30,
	}
}

// Validate checks the weight invariants
func (w Weights) Validate() error {
	if w.InfluenceWindow <= 0 {
		return fmt.Errorf("influence window must be positive, got %s", w.InfluenceWindow)
	}
	if len(w.DecayBuckets) == 0 {
		return fmt.Errorf("at least one decay bucket is required")
	}
	prev := 0.0
	for i, b := range w.DecayBuckets {
		if b.MaxHoursAfter <= prev {
			return fmt.Errorf("decay bucket %d bound %f must exceed previous bound %f", i, b.MaxHoursAfter, prev)
		}
		if b.Weight < 0 || b.Weight > 1 {
			return fmt.Errorf("decay bucket %d weight must be in [0,1], got %f", i, b.Weight)
		}
		prev = b.MaxHoursAfter
	}
	if last := w.DecayBuckets[len(w.DecayBuckets)-1].MaxHoursAfter; last != w.InfluenceWindow.Hours() {
		return fmt.Errorf("last decay bucket bound %f must equal influence window %f hours", last, w.InfluenceWindow.Hours())
	}
	for name, v := range map[string]float64{
		"new_customer_confidence": w.NewCustomerConfidence,
		"new_customer_weight":     w.NewCustomerWeight,
		"product_match_weight":    w.ProductMatchWeight,
		"anomaly_confidence":      w.AnomalyConfidence,
		"anomaly_weight":          w.AnomalyWeight,
		"residual_discount":       w.ResidualDiscount,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %f", name, v)
		}
	}
	if w.AnomalySigmaFraction <= 0 {
		return fmt.Errorf("anomaly sigma fraction must be positive, got %f", w.AnomalySigmaFraction)
	}
	if w.BaselineLookbackDays <= 0 {
		return fmt.Errorf("baseline lookback must be positive, got %d days", w.BaselineLookbackDays)
	}
	if w.MinProductTokenLength <= 0 {
		return fmt.Errorf("min product token length must be positive, got %d", w.MinProductTokenLength)
	}
	return nil
}
