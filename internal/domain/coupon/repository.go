package coupon

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pierpay/pierpay-api/internal/domain/campaign"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const couponColumns = `
	co.id, co.code, co.campaign_id, co.status, co.created_at, co.updated_at,
	ca.name AS campaign_name, ca.start_date AS campaign_start, ca.end_date AS campaign_end
`

// Generate issues a batch of coupons under a campaign row lock so the
// issued count can never pass total_limit, even for concurrent batches.
func (r *Repository) Generate(ctx context.Context, campaignID uuid.UUID, quantity int) ([]Coupon, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var totalLimit int
	err = tx.GetContext(ctx, &totalLimit, `
		SELECT total_limit FROM campaigns WHERE id = $1 FOR UPDATE
	`, campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var issued int
	if err := tx.GetContext(ctx, &issued, `
		SELECT count(*) FROM coupons WHERE campaign_id = $1
	`, campaignID); err != nil {
		return nil, err
	}
	if issued+quantity > totalLimit {
		return nil, ErrLimitExceeded
	}

	now := time.Now()
	coupons := make([]Coupon, 0, quantity)
	for i := 0; i < quantity; i++ {
		code, err := NewCode()
		if err != nil {
			return nil, err
		}
		c := Coupon{
			ID:         uuid.New(),
			Code:       code,
			CampaignID: campaignID,
			Status:     StatusAvailable,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO coupons (id, code, campaign_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.Code, c.CampaignID, c.Status, c.CreatedAt, c.UpdatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}

	return coupons, tx.Commit()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return r.getByColumn(ctx, "co.id", id)
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	return r.getByColumn(ctx, "co.code", code)
}

func (r *Repository) getByColumn(ctx context.Context, column string, value interface{}) (*Coupon, error) {
	var c Coupon
	err := r.db.GetContext(ctx, &c, `
		SELECT `+couponColumns+`
		FROM coupons co
		JOIN campaigns ca ON ca.id = co.campaign_id
		WHERE `+column+` = $1
	`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context, campaignID *uuid.UUID) ([]Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons co
		JOIN campaigns ca ON ca.id = co.campaign_id
	`
	args := []interface{}{}
	if campaignID != nil {
		args = append(args, *campaignID)
		query += ` WHERE co.campaign_id = $1`
	}
	query += ` ORDER BY co.created_at DESC`

	coupons := []Coupon{}
	err := r.db.SelectContext(ctx, &coupons, query, args...)
	return coupons, err
}

// MarkExpired is the lazy expiry write. Only an AVAILABLE coupon moves;
// USED stays terminal.
func (r *Repository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE coupons SET status = 'EXPIRED', updated_at = now()
		WHERE id = $1 AND status = 'AVAILABLE'
	`, id)
	return err
}

// Redeem transitions AVAILABLE to USED and writes the redemption row in
// one transaction. The status is re-read under a row lock; the unique
// index on redemption_logs.coupon_id is the backstop.
func (r *Repository) Redeem(ctx context.Context, couponID, userID uuid.UUID) (*RedemptionLog, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status Status
	err = tx.GetContext(ctx, &status, `
		SELECT status FROM coupons WHERE id = $1 FOR UPDATE
	`, couponID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch status {
	case StatusUsed:
		return nil, ErrAlreadyUsed
	case StatusExpired:
		return nil, ErrExpired
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE coupons SET status = 'USED', updated_at = now() WHERE id = $1
	`, couponID); err != nil {
		return nil, err
	}

	var logEntry RedemptionLog
	err = tx.GetContext(ctx, &logEntry, `
		INSERT INTO redemption_logs (id, coupon_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, coupon_id, user_id, redeemed_at
	`, uuid.New(), couponID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyUsed
		}
		return nil, err
	}

	return &logEntry, tx.Commit()
}

func (r *Repository) ListRedemptions(ctx context.Context, filter RedemptionFilter) ([]RedemptionLog, error) {
	query := `
		SELECT l.id, l.coupon_id, l.user_id, l.redeemed_at,
		       u.name AS user_name, u.email AS user_email,
		       co.code AS coupon_code, ca.name AS campaign_name
		FROM redemption_logs l
		JOIN users u ON u.id = l.user_id
		JOIN coupons co ON co.id = l.coupon_id
		JOIN campaigns ca ON ca.id = co.campaign_id
		WHERE 1=1
	`
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += ` AND l.user_id = $1`
	}
	query += ` ORDER BY l.redeemed_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	logs := []RedemptionLog{}
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, err
}
