package engine

import (
	"fmt"
	"strings"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
)

// IsFirstPurchase reports whether the order is its customer's first. An
// order with no email is conservatively treated as new: we cannot prove a
// prior purchase, and first-time buyers are the plausible campaign effect.
func IsFirstPurchase(order campaign.Order, history []campaign.Order) bool {
	if !order.HasEmail() {
		return true
	}
	email := strings.ToLower(order.CustomerEmail)
	for _, prev := range history {
		if prev.ID == order.ID {
			continue
		}
		if !prev.CreatedAt.Before(order.CreatedAt) {
			continue
		}
		if strings.ToLower(prev.CustomerEmail) == email {
			return false
		}
	}
	return true
}

// NewCustomerSignal builds the corroborating novelty signal. It is only
// emitted alongside a temporal match; novelty without temporal proximity is
// not evidence of causation on its own.
func NewCustomerSignal(w attribution.Weights) attribution.Signal {
	return attribution.Signal{
		Type:        attribution.SignalNewCustomer,
		Confidence:  w.NewCustomerConfidence,
		Weight:      w.NewCustomerWeight,
		Description: fmt.Sprintf("First purchase by this customer (confidence %.2f)", w.NewCustomerConfidence),
	}
}
