package ports

import (
	"context"
	"time"

	"postlift/domain/campaign"
)

// OrderSource provides normalized orders from a commerce backend.
// Implementations own transport and pagination; the engine only ever sees
// the returned slice.
type OrderSource interface {
	// FetchOrders returns all orders created at or after since, oldest first
	FetchOrders(ctx context.Context, since time.Time) ([]campaign.Order, error)
}
