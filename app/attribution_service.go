package app

import (
	"context"
	"fmt"
	"time"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
	"postlift/domain/core"
	"postlift/internal"
	"postlift/internal/engine"
	"postlift/internal/errors"
	"postlift/internal/identity"
	"postlift/ports"

	"golang.org/x/sync/errgroup"
)

// AttributionService orchestrates one attribution run: it gathers orders and
// posts from the configured sources and hands them to the engine. The service
// owns fetching and shaping; all scoring lives in the engine.
type AttributionService struct {
	orders       ports.OrderSource
	posts        ports.PostSource
	campaigns    ports.CampaignRepository
	engine       *engine.Engine
	lookbackDays int
	workers      int
	logger       *internal.Logger
}

// RunRequest names the campaign participants for one attribution run
type RunRequest struct {
	CampaignID  core.CampaignID `json:"campaign_id"`
	Influencers []string        `json:"influencers"` // handles, with or without @
}

// NewAttributionService creates an attribution service
func NewAttributionService(
	orders ports.OrderSource,
	posts ports.PostSource,
	campaigns ports.CampaignRepository,
	eng *engine.Engine,
	lookbackDays, workers int,
	logger *internal.Logger,
) *AttributionService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AttributionService{
		orders:       orders,
		posts:        posts,
		campaigns:    campaigns,
		engine:       eng,
		lookbackDays: lookbackDays,
		workers:      workers,
		logger:       logger.Named("attribution"),
	}
}

// Run executes attribution for a stored campaign
func (s *AttributionService) Run(ctx context.Context, req RunRequest) (*attribution.Result, error) {
	camp, err := s.campaigns.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	window := camp.Window()
	return s.RunWindow(ctx, window.Start, window.End, req.Influencers)
}

// RunWindow executes attribution for an explicit window without requiring a
// stored campaign. Orders are fetched from before the window so the baseline
// has its full lookback of history.
func (s *AttributionService) RunWindow(ctx context.Context, start, end time.Time, handles []string) (*attribution.Result, error) {
	if !end.After(start) {
		return nil, errors.WithCode(errors.CodeValidation,
			fmt.Errorf("%w: end %s is not after start %s",
				core.ErrInvalidWindow, end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	usernames, err := parseHandles(handles)
	if err != nil {
		return nil, err
	}

	since := start.AddDate(0, 0, -s.lookbackDays)
	s.logger.Info("starting attribution run: window=%s..%s influencers=%d",
		start.Format("2006-01-02"), end.Format("2006-01-02"), len(usernames))

	orders, influencers, err := s.gather(ctx, since, usernames)
	if err != nil {
		return nil, err
	}
	orders = s.dropSelfPurchases(orders, usernames)
	s.logger.Info("gathered %d orders and %d influencer accounts", len(orders), len(influencers))

	var result *attribution.Result
	if s.workers > 1 {
		result, err = s.engine.ComputeParallel(ctx, orders, influencers, start, end, s.workers)
	} else {
		result, err = s.engine.Compute(orders, influencers, start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "attribution computation failed")
	}

	s.logger.Info("attribution complete: revenue=%.2f confidence=%.2f fingerprint=%s",
		result.TotalAttributedRevenue, result.ConfidenceScore, result.Fingerprint)
	return result, nil
}

// gather fetches orders and all influencer post sets concurrently.
// Post fetches for distinct accounts are independent; one group bounds them.
func (s *AttributionService) gather(ctx context.Context, since time.Time, usernames []core.Username) ([]campaign.Order, []campaign.Influencer, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var orders []campaign.Order
	g.Go(func() error {
		var err error
		orders, err = s.orders.FetchOrders(gctx, since)
		if err != nil {
			return errors.Wrap(err, "fetching orders")
		}
		return nil
	})

	influencers := make([]campaign.Influencer, len(usernames))
	for i, username := range usernames {
		i, username := i, username
		g.Go(func() error {
			posts, err := s.posts.FetchPosts(gctx, username)
			if err != nil {
				return errors.Wrapf(err, "fetching posts for %s", username)
			}
			influencers[i] = campaign.Influencer{Username: username, Posts: posts}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return orders, influencers, nil
}

// dropSelfPurchases removes orders whose customer email maps back to one of
// the campaign handles. Influencers buying through their own link would
// inflate their attribution.
func (s *AttributionService) dropSelfPurchases(orders []campaign.Order, usernames []core.Username) []campaign.Order {
	matcher := identity.NewMatcher(usernames)
	kept := orders[:0]
	for _, o := range orders {
		if username, ok := matcher.Match(o.CustomerEmail); ok {
			s.logger.Debug("excluding self-purchase order %s by %s", o.ID, username)
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

func parseHandles(handles []string) ([]core.Username, error) {
	if len(handles) == 0 {
		return nil, errors.ValidationError("at least one influencer handle is required")
	}
	usernames := make([]core.Username, 0, len(handles))
	seen := make(map[core.Username]bool)
	for _, h := range handles {
		username, err := core.ParseUsername(h)
		if err != nil {
			return nil, errors.WithCode(errors.CodeValidation, err)
		}
		if seen[username] {
			continue
		}
		seen[username] = true
		usernames = append(usernames, username)
	}
	return usernames, nil
}
