package campaign

import (
	"fmt"
	"time"

	"postlift/domain/core"
)

// Status tracks the campaign lifecycle
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusArchived Status = "archived"
)

// Campaign is a tracked influencer marketing campaign
type Campaign struct {
	ID        core.CampaignID `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	StartDate time.Time       `json:"start_date" db:"start_date"`
	EndDate   time.Time       `json:"end_date" db:"end_date"`
	Budget    float64         `json:"budget" db:"budget"`
	Status    Status          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// NewCampaign creates a campaign with validation
func NewCampaign(name string, start, end time.Time, budget float64) (*Campaign, error) {
	if err := validateCampaign(name, budget); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Campaign{
		ID:        core.CampaignID(core.NewID()),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Budget:    budget,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Window returns the attribution window for the campaign
func (c *Campaign) Window() core.CampaignWindow {
	return core.NewCampaignWindow(c.StartDate, c.EndDate)
}

// validateCampaign checks campaign invariants
func validateCampaign(name string, budget float64) error {
	if name == "" {
		return fmt.Errorf("campaign name must be set")
	}
	if budget < 0 {
		return fmt.Errorf("campaign budget must be >= 0, got %f", budget)
	}
	return nil
}
