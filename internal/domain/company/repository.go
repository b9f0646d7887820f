package company

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Company) error {
	query := `
		INSERT INTO companies (id, name, contact_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.ContactInfo, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var c Company
	err := r.db.GetContext(ctx, &c, `SELECT * FROM companies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachWallets(ctx, &c); err != nil {
		return nil, err
	}
	for i := range c.Wallets {
		if err := r.attachRecentLogs(ctx, &c.Wallets[i]); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context) ([]Company, error) {
	companies := []Company{}
	err := r.db.SelectContext(ctx, &companies, `SELECT * FROM companies ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	for i := range companies {
		if err := r.attachWallets(ctx, &companies[i]); err != nil {
			return nil, err
		}
	}
	return companies, nil
}

func (r *Repository) Update(ctx context.Context, c *Company) error {
	query := `
		UPDATE companies
		SET name = $1, contact_info = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.ContactInfo, c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrNameTaken
		}
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the company; wallets and their logs go with it via
// ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) attachRecentLogs(ctx context.Context, w *WalletSummary) error {
	w.RecentTopups = []TopupRow{}
	err := r.db.SelectContext(ctx, &w.RecentTopups, `
		SELECT id, amount_added, kind, created_at
		FROM topup_logs
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT 10
	`, w.ID)
	if err != nil {
		return err
	}

	w.RecentUsage = []UsageRow{}
	return r.db.SelectContext(ctx, &w.RecentUsage, `
		SELECT id, amount_deducted, duration_minutes, kind, created_at
		FROM usage_logs
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT 10
	`, w.ID)
}

func (r *Repository) attachWallets(ctx context.Context, c *Company) error {
	c.Wallets = []WalletSummary{}
	return r.db.SelectContext(ctx, &c.Wallets, `
		SELECT id, type, balance, qr_token
		FROM wallets
		WHERE company_id = $1
		ORDER BY type
	`, c.ID)
}
