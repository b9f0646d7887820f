package campaign

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const campaignColumns = `
	ca.id, ca.name, ca.description, ca.total_limit, ca.start_date, ca.end_date,
	ca.created_at, ca.updated_at,
	(SELECT count(*) FROM coupons co WHERE co.campaign_id = ca.id) AS coupon_count
`

func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, description, total_limit, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Description, c.TotalLimit, c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT `+campaignColumns+`
		FROM campaigns ca
		WHERE ca.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	campaigns := []Campaign{}
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT `+campaignColumns+`
		FROM campaigns ca
		ORDER BY ca.created_at DESC
	`)
	return campaigns, err
}

// Update edits metadata and the time window. Shrinking total_limit below
// the already-generated count is rejected.
func (r *Repository) Update(ctx context.Context, c *Campaign) error {
	var generated int
	err := r.db.GetContext(ctx, &generated, `
		SELECT count(*) FROM coupons WHERE campaign_id = $1
	`, c.ID)
	if err != nil {
		return err
	}
	if c.TotalLimit < generated {
		return ErrLimitTooSmall
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET name = $1, description = $2, total_limit = $3, start_date = $4, end_date = $5, updated_at = now()
		WHERE id = $6
	`, c.Name, c.Description, c.TotalLimit, c.StartDate, c.EndDate, c.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the campaign; coupons and their redemption logs cascade
// at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats aggregates the campaign's coupon lifecycle counts.
func (r *Repository) GetStats(ctx context.Context, id uuid.UUID) (*Stats, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var s Stats
	err = r.db.GetContext(ctx, &s, `
		SELECT
			count(*) AS generated,
			count(*) FILTER (WHERE status = 'AVAILABLE') AS available,
			count(*) FILTER (WHERE status = 'USED') AS used,
			count(*) FILTER (WHERE status = 'EXPIRED') AS expired
		FROM coupons
		WHERE campaign_id = $1
	`, id)
	if err != nil {
		return nil, err
	}

	s.CampaignID = c.ID
	s.TotalLimit = c.TotalLimit
	s.Remaining = c.TotalLimit - s.Generated
	return &s, nil
}
