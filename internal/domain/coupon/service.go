package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pierpay/pierpay-api/internal/pkg/qrcode"
)

// Service drives the coupon lifecycle: batch generation, validation with
// lazy expiry, and exactly-once redemption.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ValidationResult reports a coupon check without redeeming.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason,omitempty"`
	Coupon *Coupon `json:"coupon,omitempty"`
}

// RedeemResult pairs the used coupon with its redemption record.
type RedeemResult struct {
	Coupon        *Coupon        `json:"coupon"`
	RedemptionLog *RedemptionLog `json:"redemption_log"`
}

// Generate issues a batch of coupons for a campaign.
func (s *Service) Generate(ctx context.Context, campaignID uuid.UUID, quantity int) ([]Coupon, error) {
	coupons, err := s.repo.Generate(ctx, campaignID, quantity)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("campaign_id", campaignID.String()).
		Int("quantity", quantity).
		Msg("coupons generated")

	return coupons, nil
}

// Validate checks a coupon without redeeming it. A coupon whose campaign
// has ended is lazily transitioned to EXPIRED here: the first check after
// the end date reports campaign_ended, later checks report expired.
func (s *Service) Validate(ctx context.Context, code string) (*ValidationResult, error) {
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if err == ErrNotFound {
			return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	if reason, err := s.checkLifecycle(ctx, c); err != nil {
		return nil, err
	} else if reason != "" {
		return &ValidationResult{Valid: false, Reason: reason, Coupon: c}, nil
	}

	return &ValidationResult{Valid: true, Coupon: c}, nil
}

// Redeem transitions a coupon to USED exactly once. The lifecycle checks
// run again here and the repository re-checks status under the row lock,
// so a stale Validate result can never double-redeem.
func (s *Service) Redeem(ctx context.Context, code string, userID uuid.UUID) (*RedeemResult, error) {
	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if reason, err := s.checkLifecycle(ctx, c); err != nil {
		return nil, err
	} else if reason != "" {
		return nil, lifecycleErr(reason)
	}

	logEntry, err := s.repo.Redeem(ctx, c.ID, userID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("coupon_id", c.ID.String()).
		Str("code", c.Code).
		Str("user_id", userID.String()).
		Msg("coupon redeemed")

	c.Status = StatusUsed
	return &RedeemResult{Coupon: c, RedemptionLog: logEntry}, nil
}

// checkLifecycle returns the rejection reason for a non-redeemable
// coupon, writing the lazy EXPIRED transition when the campaign window
// has closed. Empty reason means redeemable.
func (s *Service) checkLifecycle(ctx context.Context, c *Coupon) (string, error) {
	switch c.Status {
	case StatusUsed:
		return ReasonAlreadyUsed, nil
	case StatusExpired:
		return ReasonExpired, nil
	}

	now := time.Now()
	if now.Before(c.CampaignStart) {
		return ReasonNotStarted, nil
	}
	if now.After(c.CampaignEnd) {
		if err := s.repo.MarkExpired(ctx, c.ID); err != nil {
			return "", err
		}
		c.Status = StatusExpired
		return ReasonCampaignEnded, nil
	}
	return "", nil
}

func lifecycleErr(reason string) error {
	switch reason {
	case ReasonAlreadyUsed:
		return ErrAlreadyUsed
	case ReasonExpired:
		return ErrExpired
	case ReasonNotStarted:
		return ErrNotStarted
	case ReasonCampaignEnded:
		return ErrCampaignEnded
	default:
		return ErrNotFound
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, campaignID *uuid.UUID) ([]Coupon, error) {
	return s.repo.List(ctx, campaignID)
}

func (s *Service) ListRedemptions(ctx context.Context, filter RedemptionFilter) ([]RedemptionLog, error) {
	return s.repo.ListRedemptions(ctx, filter)
}

// QRDataURL renders the coupon code as a QR PNG data URL.
func (s *Service) QRDataURL(c *Coupon) (string, error) {
	return qrcode.DataURL(c.Code, 512)
}
