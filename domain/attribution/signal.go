package attribution

// SignalType identifies one kind of attribution evidence
type SignalType string

const (
	// SignalTemporal means the order landed inside a post's influence window
	SignalTemporal SignalType = "temporal"
	// SignalNewCustomer means the order is the customer's first purchase
	SignalNewCustomer SignalType = "new_customer"
	// SignalProductMatch means the post caption names a purchased product
	SignalProductMatch SignalType = "product_match"
	// SignalAnomaly means the order fell in an hour of abnormal revenue
	SignalAnomaly SignalType = "anomaly"
	// SignalBaseline marks residual revenue allocated by engagement share
	SignalBaseline SignalType = "baseline"
)

// Strong reports whether the signal type counts as strong evidence for the
// global confidence score. Anomaly and baseline are corroborating at best.
func (t SignalType) Strong() bool {
	switch t {
	case SignalTemporal, SignalNewCustomer, SignalProductMatch:
		return true
	}
	return false
}

// Signal is one piece of evidence tying an order to a post. Signals are
// ephemeral: computed per (order, post) pair during one engine run, never
// persisted.
type Signal struct {
	Type        SignalType `json:"type"`
	Confidence  float64    `json:"confidence"` // 0.0 to 1.0
	Weight      float64    `json:"weight"`
	Description string     `json:"description"` // Human-readable explanation
}

// Contribution returns the signal's share of a post's score
func (s Signal) Contribution() float64 {
	return s.Confidence * s.Weight
}
