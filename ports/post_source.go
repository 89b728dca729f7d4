package ports

import (
	"context"

	"postlift/domain/campaign"
	"postlift/domain/core"
)

// PostSource provides scraped posts for one influencer account.
// Posts arrive pre-classified for product mentions where an upstream
// heuristic or human has already judged them; otherwise Unclassified.
type PostSource interface {
	FetchPosts(ctx context.Context, username core.Username) ([]campaign.Post, error)
}
