package campaign

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a time-windowed, quantity-capped issuer of coupons.
type Campaign struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	TotalLimit  int       `db:"total_limit" json:"total_limit"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	CouponCount int `db:"coupon_count" json:"coupon_count"`
}

// IsActive reports whether the campaign window covers the given instant.
func (c *Campaign) IsActive(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// Stats aggregates coupon lifecycle counts for one campaign.
type Stats struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	TotalLimit int       `json:"total_limit"`
	Generated  int       `db:"generated" json:"generated"`
	Available  int       `db:"available" json:"available"`
	Used       int       `db:"used" json:"used"`
	Expired    int       `db:"expired" json:"expired"`
	Remaining  int       `json:"remaining"`
}

// CreateRequest creates a campaign.
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TotalLimit  int     `json:"total_limit" validate:"required,gt=0"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
}

// UpdateRequest edits campaign metadata and window.
type UpdateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TotalLimit  int     `json:"total_limit" validate:"required,gt=0"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
}
