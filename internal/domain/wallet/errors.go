package wallet

import "errors"

var (
	ErrNotFound            = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists for this company and type")
	ErrInvalidAmount       = errors.New("invalid amount: must be greater than 0")
	ErrFractionalTrips     = errors.New("boat wallets hold whole trips")
	ErrInvalidDuration     = errors.New("duration must be 0 or greater")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrTokenExpired        = errors.New("display token expired")
)

// Stable machine-readable reason codes surfaced to the presentation layer.
const (
	ReasonNotFound            = "not_found"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonTokenExpired        = "token_expired"
)
