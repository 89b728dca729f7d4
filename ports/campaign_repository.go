package ports

import (
	"context"

	"postlift/domain/campaign"
	"postlift/domain/core"
)

// CampaignRepository persists campaign records. Attribution results are
// never stored: the engine is recomputed on demand from fresh inputs.
type CampaignRepository interface {
	Create(ctx context.Context, c *campaign.Campaign) error
	GetByID(ctx context.Context, id core.CampaignID) (*campaign.Campaign, error)
	List(ctx context.Context, limit, offset int) ([]*campaign.Campaign, error)
	Update(ctx context.Context, c *campaign.Campaign) error
	Delete(ctx context.Context, id core.CampaignID) error
}
