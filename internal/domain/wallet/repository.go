package wallet

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

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

const walletColumns = `
	w.id, w.company_id, w.type, w.balance, w.qr_token,
	w.qr_display_token, w.qr_display_token_expiry, w.created_at, w.updated_at,
	c.name AS company_name
`

// Create inserts a wallet and, when an initial balance is given, the
// synthesized topup log in the same transaction.
func (r *Repository) Create(ctx context.Context, w *Wallet, initialBalance float64, adminID uuid.UUID) (*TopupLog, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (id, company_id, type, balance, qr_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, w.ID, w.CompanyID, w.Type, initialBalance, w.QRToken, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrWalletExists
		}
		return nil, err
	}
	w.Balance = initialBalance

	var logEntry *TopupLog
	if initialBalance > 0 {
		logEntry, err = r.insertTopupLog(ctx, tx, w.ID, initialBalance, LogKindTopup, adminID)
		if err != nil {
			return nil, err
		}
	}

	return logEntry, tx.Commit()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT `+walletColumns+`
		FROM wallets w
		JOIN companies c ON c.id = w.company_id
		WHERE w.id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets w
		JOIN companies c ON c.id = w.company_id
		WHERE 1=1
	`
	args := []interface{}{}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		query += ` AND w.company_id = $1`
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += ` AND w.type = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY w.created_at DESC`

	wallets := []Wallet{}
	err := r.db.SelectContext(ctx, &wallets, query, args...)
	return wallets, err
}

// FindByDisplayToken resolves a wallet by its rotating display token.
func (r *Repository) FindByDisplayToken(ctx context.Context, token string) (*Wallet, error) {
	return r.findByTokenColumn(ctx, "qr_display_token", token)
}

// FindByQRToken resolves a wallet by its permanent scan token.
func (r *Repository) FindByQRToken(ctx context.Context, token string) (*Wallet, error) {
	return r.findByTokenColumn(ctx, "qr_token", token)
}

func (r *Repository) findByTokenColumn(ctx context.Context, column, token string) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `
		SELECT `+walletColumns+`
		FROM wallets w
		JOIN companies c ON c.id = w.company_id
		WHERE w.`+column+` = $1
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ReassignCompany moves a wallet to another company. The (company, type)
// uniqueness constraint rejects duplicates.
func (r *Repository) ReassignCompany(ctx context.Context, walletID, companyID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE wallets SET company_id = $1, updated_at = now() WHERE id = $2
	`, companyID, walletID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrWalletExists
		}
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateDisplayToken persists a fresh display token and expiry. Single-row
// write; safe under races because the token is advisory for display.
func (r *Repository) RotateDisplayToken(ctx context.Context, walletID uuid.UUID, token string, expiry time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE wallets
		SET qr_display_token = $1, qr_display_token_expiry = $2, updated_at = now()
		WHERE id = $3
	`, token, expiry, walletID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Topup credits the wallet and writes the paired audit row in one
// transaction.
func (r *Repository) Topup(ctx context.Context, walletID uuid.UUID, amount float64, kind LogKind, adminID uuid.UUID) (float64, *TopupLog, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, walletID)
	if err != nil {
		return 0, nil, err
	}

	newBalance := balance + amount
	if err := r.updateBalance(ctx, tx, walletID, newBalance); err != nil {
		return 0, nil, err
	}

	logEntry, err := r.insertTopupLog(ctx, tx, walletID, amount, kind, adminID)
	if err != nil {
		return 0, nil, err
	}

	return newBalance, logEntry, tx.Commit()
}

// Use debits the wallet. The balance is re-read under the row lock: this
// check, not any earlier validation, is authoritative.
func (r *Repository) Use(ctx context.Context, walletID uuid.UUID, amount float64, durationMinutes *int, kind LogKind, staffID uuid.UUID) (float64, *UsageLog, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, walletID)
	if err != nil {
		return 0, nil, err
	}

	if balance < amount {
		return 0, nil, ErrInsufficientBalance
	}

	newBalance := balance - amount
	if err := r.updateBalance(ctx, tx, walletID, newBalance); err != nil {
		return 0, nil, err
	}

	logEntry, err := r.insertUsageLog(ctx, tx, walletID, amount, durationMinutes, kind, staffID)
	if err != nil {
		return 0, nil, err
	}

	return newBalance, logEntry, tx.Commit()
}

// Adjust sets the balance to a target value through the ledger: the delta
// under the row lock becomes an adjustment-kind audit row, so corrections
// keep the balance/log pairing intact.
func (r *Repository) Adjust(ctx context.Context, walletID uuid.UUID, newBalance float64, adminID uuid.UUID) (*TopupLog, *UsageLog, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, walletID)
	if err != nil {
		return nil, nil, err
	}

	delta := newBalance - balance
	if delta == 0 {
		return nil, nil, tx.Commit()
	}

	if err := r.updateBalance(ctx, tx, walletID, newBalance); err != nil {
		return nil, nil, err
	}

	var topupLog *TopupLog
	var usageLog *UsageLog
	if delta > 0 {
		topupLog, err = r.insertTopupLog(ctx, tx, walletID, delta, LogKindAdjustment, adminID)
	} else {
		usageLog, err = r.insertUsageLog(ctx, tx, walletID, -delta, nil, LogKindAdjustment, adminID)
	}
	if err != nil {
		return nil, nil, err
	}

	return topupLog, usageLog, tx.Commit()
}

func (r *Repository) ListTopups(ctx context.Context, filter LogFilter) ([]TopupLog, error) {
	query := `
		SELECT t.id, t.wallet_id, t.amount_added, t.kind, t.admin_id, t.created_at,
		       u.name AS admin_name, u.email AS admin_email, c.name AS company_name
		FROM topup_logs t
		JOIN users u ON u.id = t.admin_id
		JOIN wallets w ON w.id = t.wallet_id
		JOIN companies c ON c.id = w.company_id
		WHERE 1=1
	`
	args := []interface{}{}
	if filter.WalletID != nil {
		args = append(args, *filter.WalletID)
		query += ` AND t.wallet_id = $` + strconv.Itoa(len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += ` AND t.admin_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY t.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	logs := []TopupLog{}
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, err
}

func (r *Repository) ListUsage(ctx context.Context, filter LogFilter) ([]UsageLog, error) {
	query := `
		SELECT l.id, l.wallet_id, l.amount_deducted, l.duration_minutes, l.kind,
		       l.staff_id, l.created_at,
		       u.name AS staff_name, u.email AS staff_email, c.name AS company_name
		FROM usage_logs l
		JOIN users u ON u.id = l.staff_id
		JOIN wallets w ON w.id = l.wallet_id
		JOIN companies c ON c.id = w.company_id
		WHERE 1=1
	`
	args := []interface{}{}
	if filter.WalletID != nil {
		args = append(args, *filter.WalletID)
		query += ` AND l.wallet_id = $` + strconv.Itoa(len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += ` AND l.staff_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY l.created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	logs := []UsageLog{}
	err := r.db.SelectContext(ctx, &logs, query, args...)
	return logs, err
}

// PublicTopupHistory returns the bare credit history shown on the public
// wallet page (no actor identities).
func (r *Repository) PublicTopupHistory(ctx context.Context, walletID uuid.UUID, limit int) ([]TopupLog, error) {
	logs := []TopupLog{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, wallet_id, amount_added, kind, admin_id, created_at
		FROM topup_logs
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, walletID, limit)
	return logs, err
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID) (float64, error) {
	var balance float64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`, walletID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return balance, err
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, balance float64) error {
	_, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, balance, walletID)
	return err
}

func (r *Repository) insertTopupLog(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, amount float64, kind LogKind, adminID uuid.UUID) (*TopupLog, error) {
	var logEntry TopupLog
	err := tx.GetContext(ctx, &logEntry, `
		INSERT INTO topup_logs (id, wallet_id, amount_added, kind, admin_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, wallet_id, amount_added, kind, admin_id, created_at
	`, uuid.New(), walletID, amount, kind, adminID)
	if err != nil {
		return nil, err
	}
	return &logEntry, nil
}

func (r *Repository) insertUsageLog(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, amount float64, durationMinutes *int, kind LogKind, staffID uuid.UUID) (*UsageLog, error) {
	var logEntry UsageLog
	err := tx.GetContext(ctx, &logEntry, `
		INSERT INTO usage_logs (id, wallet_id, amount_deducted, duration_minutes, kind, staff_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, wallet_id, amount_deducted, duration_minutes, kind, staff_id, created_at
	`, uuid.New(), walletID, amount, durationMinutes, kind, staffID)
	if err != nil {
		return nil, err
	}
	return &logEntry, nil
}
