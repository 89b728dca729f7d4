package core

import (
	"time"
)

// CampaignWindow bounds one attribution computation: [Start, End)
type CampaignWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewCampaignWindow creates a campaign window
func NewCampaignWindow(start, end time.Time) CampaignWindow {
	return CampaignWindow{Start: start, End: end}
}

// Days returns the window length in fractional days, 0 for degenerate windows
func (w CampaignWindow) Days() float64 {
	if !w.End.After(w.Start) {
		return 0
	}
	return w.End.Sub(w.Start).Hours() / 24
}

// Contains reports whether t falls inside [Start, End)
func (w CampaignWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// String representation
func (w CampaignWindow) String() string {
	return w.Start.Format(time.RFC3339) + ".." + w.End.Format(time.RFC3339)
}
