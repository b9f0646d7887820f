package coupon

import "errors"

var (
	ErrNotFound      = errors.New("coupon not found")
	ErrAlreadyUsed   = errors.New("coupon already used")
	ErrExpired       = errors.New("coupon expired")
	ErrNotStarted    = errors.New("campaign has not started")
	ErrCampaignEnded = errors.New("campaign has ended")
	ErrLimitExceeded = errors.New("campaign coupon limit exceeded")
)

// Stable machine-readable reason codes surfaced to the presentation layer.
const (
	ReasonNotFound      = "not_found"
	ReasonAlreadyUsed   = "already_used"
	ReasonExpired       = "expired"
	ReasonNotStarted    = "not_started"
	ReasonCampaignEnded = "campaign_ended"
)
