package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
)

// ComputeParallel is Compute with the per-order loop sharded across
// workers. Every order is scored independently, so the order set splits
// cleanly; shard accumulators are merged in shard index order to keep
// floating-point summation reproducible run to run.
func (e *Engine) ComputeParallel(ctx context.Context, orders []campaign.Order, influencers []campaign.Influencer, start, end time.Time, workers int) (*attribution.Result, error) {
	if workers <= 1 {
		return e.Compute(orders, influencers, start, end)
	}

	rc := e.prepareRun(orders, influencers, start, end)
	merged := rc.accs

	type shardResult struct {
		accs         *accumulators
		attributed   int
		unattributed []campaign.Order
	}

	shards := chunkOrders(rc.campaignOrders, workers)
	results := make([]shardResult, len(shards))

	g, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, accs := e.prepareCandidates(influencers)
			res := shardResult{accs: accs}
			for _, order := range shard {
				if e.attributeOrder(order, rc.history, rc.candidates, rc.flags, accs) {
					res.attributed++
				} else {
					res.unattributed = append(res.unattributed, order)
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	attributedCount := 0
	var unattributed []campaign.Order
	for _, res := range results {
		merged.merge(res.accs)
		attributedCount += res.attributed
		unattributed = append(unattributed, res.unattributed...)
	}

	residual := e.allocateResidual(unattributed, merged)

	return e.aggregate(merged, rc.baseline, rc.window, rc.campaignOrders, rc.campaignRevenue, aggregateStats{
		candidateCount:  len(rc.candidates),
		attributedCount: attributedCount,
		anomalousHours:  rc.anomalousHours,
		hourBuckets:     len(rc.flags),
		residual:        residual,
	})
}

// chunkOrders splits orders into at most n contiguous shards
func chunkOrders(orders []campaign.Order, n int) [][]campaign.Order {
	if len(orders) == 0 {
		return nil
	}
	if n > len(orders) {
		n = len(orders)
	}
	size := (len(orders) + n - 1) / n
	var shards [][]campaign.Order
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		shards = append(shards, orders[start:end])
	}
	return shards
}
