package coupon

import (
	"time"

	"github.com/google/uuid"
)

// Status is the coupon lifecycle state. AVAILABLE is the only state that
// permits a transition; USED and EXPIRED are terminal.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusUsed      Status = "USED"
	StatusExpired   Status = "EXPIRED"
)

// Coupon is a single-use voucher belonging to a campaign.
type Coupon struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	CampaignName  string    `db:"campaign_name" json:"campaign_name,omitempty"`
	CampaignStart time.Time `db:"campaign_start" json:"campaign_start,omitempty"`
	CampaignEnd   time.Time `db:"campaign_end" json:"campaign_end,omitempty"`
}

// RedemptionLog is one successful redemption. Append-only; at most one
// row per coupon.
type RedemptionLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CouponID   uuid.UUID `db:"coupon_id" json:"coupon_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	RedeemedAt time.Time `db:"redeemed_at" json:"redeemed_at"`

	UserName     string `db:"user_name" json:"user_name,omitempty"`
	UserEmail    string `db:"user_email" json:"user_email,omitempty"`
	CouponCode   string `db:"coupon_code" json:"coupon_code,omitempty"`
	CampaignName string `db:"campaign_name" json:"campaign_name,omitempty"`
}

// RedemptionFilter narrows redemption history listings.
type RedemptionFilter struct {
	UserID *uuid.UUID
	Limit  int
}

// GenerateRequest issues a batch of coupons for a campaign.
type GenerateRequest struct {
	CampaignID string `json:"campaign_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,gt=0,lte=1000"`
}

// ValidateRequest checks a coupon without redeeming it.
type ValidateRequest struct {
	Code string `json:"code" validate:"required"`
}

// RedeemRequest redeems a coupon for the authenticated user.
type RedeemRequest struct {
	Code string `json:"code" validate:"required"`
}
