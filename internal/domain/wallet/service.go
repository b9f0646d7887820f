package wallet

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pierpay/pierpay-api/internal/pkg/qrcode"
)

// Service applies balance-changing operations and resolves scan tokens.
type Service struct {
	repo            *Repository
	displayTokenTTL time.Duration
	publicBaseURL   string
}

func NewService(repo *Repository, displayTokenTTL time.Duration, publicBaseURL string) *Service {
	return &Service{
		repo:            repo,
		displayTokenTTL: displayTokenTTL,
		publicBaseURL:   publicBaseURL,
	}
}

// ValidationResult reports an advisory pre-debit check.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Wallet *Info  `json:"wallet,omitempty"`
}

// TopupResult pairs the committed balance with its audit row.
type TopupResult struct {
	NewBalance float64   `json:"new_balance"`
	TopupLog   *TopupLog `json:"topup_log"`
}

// UsageResult pairs the committed balance with its audit row.
type UsageResult struct {
	NewBalance float64   `json:"new_balance"`
	UsageLog   *UsageLog `json:"usage_log"`
}

// AdjustResult reports an administrative balance correction.
type AdjustResult struct {
	NewBalance float64   `json:"new_balance"`
	TopupLog   *TopupLog `json:"topup_log,omitempty"`
	UsageLog   *UsageLog `json:"usage_log,omitempty"`
}

// PublicView is the unauthenticated wallet page payload.
type PublicView struct {
	Wallet               Info       `json:"wallet"`
	QRCodeDataURL        string     `json:"qr_code_data_url"`
	QRDisplayTokenExpiry *time.Time `json:"qr_display_token_expiry"`
}

// Create provisions a wallet with a fresh permanent token. An initial
// balance synthesizes a topup log so the audit trail starts complete.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, walletType Type, initialBalance float64, adminID uuid.UUID) (*Wallet, error) {
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}
	if walletType == TypeBoat && hasFraction(initialBalance) {
		return nil, ErrFractionalTrips
	}

	token, err := NewQRToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	w := &Wallet{
		ID:        uuid.New(),
		CompanyID: companyID,
		Type:      walletType,
		QRToken:   token,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.repo.Create(ctx, w, initialBalance, adminID); err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet_id", w.ID.String()).
		Str("company_id", companyID.String()).
		Str("type", string(walletType)).
		Float64("initial_balance", initialBalance).
		Msg("wallet created")

	return s.repo.GetByID(ctx, w.ID)
}

// Topup credits a wallet.
func (s *Service) Topup(ctx context.Context, walletID uuid.UUID, amount float64, adminID uuid.UUID) (*TopupResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.checkWholeUnits(ctx, walletID, amount); err != nil {
		return nil, err
	}

	newBalance, logEntry, err := s.repo.Topup(ctx, walletID, amount, LogKindTopup, adminID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet_id", walletID.String()).
		Str("admin_id", adminID.String()).
		Float64("amount", amount).
		Float64("new_balance", newBalance).
		Msg("wallet topup applied")

	return &TopupResult{NewBalance: newBalance, TopupLog: logEntry}, nil
}

// Use debits a wallet. The sufficiency check runs inside the repository
// transaction; a concurrent debit that would drive the balance negative
// loses with ErrInsufficientBalance.
func (s *Service) Use(ctx context.Context, walletID uuid.UUID, amount float64, durationMinutes *int, staffID uuid.UUID) (*UsageResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if durationMinutes != nil && *durationMinutes < 0 {
		return nil, ErrInvalidDuration
	}
	if err := s.checkWholeUnits(ctx, walletID, amount); err != nil {
		return nil, err
	}

	newBalance, logEntry, err := s.repo.Use(ctx, walletID, amount, durationMinutes, LogKindUsage, staffID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet_id", walletID.String()).
		Str("staff_id", staffID.String()).
		Float64("amount", amount).
		Float64("new_balance", newBalance).
		Msg("wallet usage applied")

	return &UsageResult{NewBalance: newBalance, UsageLog: logEntry}, nil
}

// AdjustBalance routes an administrative balance correction through the
// ledger so the change still pairs with an audit row.
func (s *Service) AdjustBalance(ctx context.Context, walletID uuid.UUID, newBalance float64, adminID uuid.UUID) (*AdjustResult, error) {
	if newBalance < 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.checkWholeUnits(ctx, walletID, newBalance); err != nil {
		return nil, err
	}

	topupLog, usageLog, err := s.repo.Adjust(ctx, walletID, newBalance, adminID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet_id", walletID.String()).
		Str("admin_id", adminID.String()).
		Float64("new_balance", newBalance).
		Msg("wallet balance adjusted")

	return &AdjustResult{NewBalance: newBalance, TopupLog: topupLog, UsageLog: usageLog}, nil
}

// ResolveByToken finds a wallet by either kind of token: the rotating
// display token first, the permanent token as fallback. Staff never need
// to know which kind was scanned.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*Wallet, error) {
	w, err := s.repo.FindByDisplayToken(ctx, token)
	if err == nil {
		return w, nil
	}
	if err != ErrNotFound {
		return nil, err
	}
	return s.repo.FindByQRToken(ctx, token)
}

// ValidateUse is the advisory pre-debit check exposed to the scanner UI.
// It never mutates state and is never authoritative: Use re-checks the
// balance under the row lock.
func (s *Service) ValidateUse(ctx context.Context, token string, amount float64) (*ValidationResult, error) {
	if amount <= 0 {
		return &ValidationResult{Valid: false, Reason: ReasonInvalidAmount}, nil
	}

	w, err := s.ResolveByToken(ctx, token)
	if err != nil {
		if err == ErrNotFound {
			return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	// An expired display token is rejected even though the row matched;
	// the permanent token has no expiry.
	if w.QRDisplayToken != nil && *w.QRDisplayToken == token &&
		w.QRDisplayTokenExpiry != nil && w.QRDisplayTokenExpiry.Before(time.Now()) {
		return &ValidationResult{Valid: false, Reason: ReasonTokenExpired}, nil
	}

	info := newInfo(w)
	if w.Balance < amount {
		return &ValidationResult{Valid: false, Reason: ReasonInsufficientBalance, Wallet: &info}, nil
	}

	return &ValidationResult{Valid: true, Wallet: &info}, nil
}

// RedeemByToken resolves the scanned token and debits the wallet. The
// same expired-display-token rule as ValidateUse applies; everything else
// defers to Use and its in-transaction balance check.
func (s *Service) RedeemByToken(ctx context.Context, token string, amount float64, durationMinutes *int, staffID uuid.UUID) (*UsageResult, error) {
	w, err := s.ResolveByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if w.QRDisplayToken != nil && *w.QRDisplayToken == token &&
		w.QRDisplayTokenExpiry != nil && w.QRDisplayTokenExpiry.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	return s.Use(ctx, w.ID, amount, durationMinutes, staffID)
}

// EnsureFreshDisplayToken returns the wallet's current display token,
// rotating it first when unset or expired. Lazy read-through refresh; no
// background job. Concurrent rotations are harmless: last write wins.
func (s *Service) EnsureFreshDisplayToken(ctx context.Context, w *Wallet) (string, time.Time, error) {
	now := time.Now()
	if w.QRDisplayToken != nil && w.QRDisplayTokenExpiry != nil && w.QRDisplayTokenExpiry.After(now) {
		return *w.QRDisplayToken, *w.QRDisplayTokenExpiry, nil
	}

	token, err := NewQRToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiry := now.Add(s.displayTokenTTL)

	if err := s.repo.RotateDisplayToken(ctx, w.ID, token, expiry); err != nil {
		return "", time.Time{}, err
	}

	log.Info().
		Str("wallet_id", w.ID.String()).
		Time("expiry", expiry).
		Msg("display token rotated")

	w.QRDisplayToken = &token
	w.QRDisplayTokenExpiry = &expiry
	return token, expiry, nil
}

// PublicWallet builds the unauthenticated wallet page view. Reading it
// rotates the display token when needed and renders the QR image for the
// public scan URL.
func (s *Service) PublicWallet(ctx context.Context, walletID uuid.UUID) (*PublicView, error) {
	w, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	token, expiry, err := s.EnsureFreshDisplayToken(ctx, w)
	if err != nil {
		return nil, err
	}

	qrURL := s.publicBaseURL + "/public/qr/" + token
	dataURL, err := qrcode.DataURL(qrURL, 512)
	if err != nil {
		return nil, err
	}

	return &PublicView{
		Wallet:               newInfo(w),
		QRCodeDataURL:        dataURL,
		QRDisplayTokenExpiry: &expiry,
	}, nil
}

// PermanentQR renders the operational QR image carrying the permanent
// token, used for printed cards handled by staff.
func (s *Service) PermanentQR(ctx context.Context, walletID uuid.UUID) (*Wallet, string, error) {
	w, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		return nil, "", err
	}

	dataURL, err := qrcode.DataURL(w.QRToken, 512)
	if err != nil {
		return nil, "", err
	}
	return w, dataURL, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Wallet, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) ReassignCompany(ctx context.Context, walletID, companyID uuid.UUID) error {
	return s.repo.ReassignCompany(ctx, walletID, companyID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("wallet_id", id.String()).Msg("wallet deleted")
	return nil
}

func (s *Service) ListTopups(ctx context.Context, filter LogFilter) ([]TopupLog, error) {
	return s.repo.ListTopups(ctx, filter)
}

func (s *Service) ListUsage(ctx context.Context, filter LogFilter) ([]UsageLog, error) {
	return s.repo.ListUsage(ctx, filter)
}

// PublicTopupHistory clamps the row count to a small window before
// delegating; the public page never pages through full history.
func (s *Service) PublicTopupHistory(ctx context.Context, walletID uuid.UUID, limit int) ([]TopupLog, error) {
	if limit < 10 {
		limit = 10
	}
	if limit > 20 {
		limit = 20
	}
	if _, err := s.repo.GetByID(ctx, walletID); err != nil {
		return nil, err
	}
	return s.repo.PublicTopupHistory(ctx, walletID, limit)
}

// checkWholeUnits rejects fractional amounts for BOAT wallets; trips are
// indivisible. The wallet type is immutable, so reading it outside the
// debit transaction is safe.
func (s *Service) checkWholeUnits(ctx context.Context, walletID uuid.UUID, amount float64) error {
	w, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		return err
	}
	if w.Type == TypeBoat && hasFraction(amount) {
		return ErrFractionalTrips
	}
	return nil
}

func hasFraction(v float64) bool {
	return v != math.Trunc(v)
}

func newInfo(w *Wallet) Info {
	return Info{
		ID:      w.ID,
		Type:    w.Type,
		Balance: w.Balance,
		Company: CompanyRef{ID: w.CompanyID, Name: w.CompanyName},
	}
}
