package postgres

import (
	"context"
	"database/sql"
	"time"

	"postlift/domain/campaign"
	"postlift/domain/core"
	"postlift/internal/errors"
	"postlift/ports"

	"github.com/jmoiron/sqlx"
)

// CampaignRepositoryImpl implements CampaignRepository for PostgreSQL
type CampaignRepositoryImpl struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new PostgreSQL campaign repository
func NewCampaignRepository(db *sqlx.DB) ports.CampaignRepository {
	return &CampaignRepositoryImpl{db: db}
}

// Create inserts a new campaign
func (r *CampaignRepositoryImpl) Create(ctx context.Context, c *campaign.Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, start_date, end_date, budget, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.StartDate, c.EndDate, c.Budget, c.Status, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		return errors.Wrap(err, "inserting campaign")
	}
	return nil
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepositoryImpl) GetByID(ctx context.Context, id core.CampaignID) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, start_date, end_date, budget, status, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`, id)

	if err == sql.ErrNoRows {
		return nil, core.NewNotFoundError("campaign", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading campaign")
	}
	return &c, nil
}

// List returns campaigns newest first
func (r *CampaignRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*campaign.Campaign, error) {
	if limit <= 0 {
		limit = 50
	}

	var campaigns []*campaign.Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT id, name, start_date, end_date, budget, status, created_at, updated_at
		FROM campaigns
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)

	if err != nil {
		return nil, errors.Wrap(err, "listing campaigns")
	}
	return campaigns, nil
}

// Update persists changes to an existing campaign
func (r *CampaignRepositoryImpl) Update(ctx context.Context, c *campaign.Campaign) error {
	c.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET name = $2, start_date = $3, end_date = $4, budget = $5, status = $6, updated_at = $7
		WHERE id = $1
	`, c.ID, c.Name, c.StartDate, c.EndDate, c.Budget, c.Status, c.UpdatedAt)

	if err != nil {
		return errors.Wrap(err, "updating campaign")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return core.NewNotFoundError("campaign", c.ID.String())
	}
	return nil
}

// Delete removes a campaign
func (r *CampaignRepositoryImpl) Delete(ctx context.Context, id core.CampaignID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM campaigns WHERE id = $1
	`, id)

	if err != nil {
		return errors.Wrap(err, "deleting campaign")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return core.NewNotFoundError("campaign", id.String())
	}
	return nil
}
