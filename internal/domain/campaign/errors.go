package campaign

import "errors"

var (
	ErrNotFound      = errors.New("campaign not found")
	ErrInvalidWindow = errors.New("campaign end date must be after start date")
	ErrLimitTooSmall = errors.New("total limit is below the generated coupon count")
)
