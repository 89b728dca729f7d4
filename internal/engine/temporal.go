package engine

import (
	"fmt"
	"time"

	"postlift/domain/attribution"
)

// ClassifyTemporal decides whether an order falls inside a post's influence
// window and, if so, which decay bucket it lands in. Returns nil for orders
// placed before the post or beyond the window: a purchase cannot be caused
// by a post that did not exist yet, and one days later is noise.
func ClassifyTemporal(orderAt, postAt time.Time, w attribution.Weights) *attribution.Signal {
	if orderAt.Before(postAt) {
		return nil
	}
	elapsed := orderAt.Sub(postAt)
	if elapsed > w.InfluenceWindow {
		return nil
	}

	hoursAfter := elapsed.Hours()
	bucket := w.DecayBuckets[len(w.DecayBuckets)-1]
	for _, b := range w.DecayBuckets {
		if hoursAfter <= b.MaxHoursAfter {
			bucket = b
			break
		}
	}

	// Confidence decays linearly with distance from the post, independent of
	// the bucket weight: the bucket says how much the match is worth, the
	// confidence says how sure we are it is a match at all.
	confidence := 1 - hoursAfter/w.InfluenceWindow.Hours()

	return &attribution.Signal{
		Type:        attribution.SignalTemporal,
		Confidence:  confidence,
		Weight:      bucket.Weight,
		Description: fmt.Sprintf("Order placed %.1fh after post (bucket <=%.0fh, weight %.2f)", hoursAfter, bucket.MaxHoursAfter, bucket.Weight),
	}
}
