package wallet

// CreateRequest provisions a wallet for a company.
type CreateRequest struct {
	CompanyID      string  `json:"company_id" validate:"required,uuid"`
	Type           string  `json:"type" validate:"required,wallet_type"`
	InitialBalance float64 `json:"initial_balance" validate:"gte=0"`
}

// AdjustBalanceRequest sets a wallet to a target balance.
type AdjustBalanceRequest struct {
	Balance *float64 `json:"balance" validate:"required,gte=0"`
}

// ReassignRequest moves a wallet to another company.
type ReassignRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid"`
}

// TopupRequest credits a wallet.
type TopupRequest struct {
	WalletID string  `json:"wallet_id" validate:"required,uuid"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// ValidateRequest is the advisory pre-debit check payload.
type ValidateRequest struct {
	Token  string  `json:"token" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// UseRequest debits a wallet addressed by id.
type UseRequest struct {
	WalletID        string  `json:"wallet_id" validate:"required,uuid"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
}

// RedeemRequest debits a wallet by scanned token.
type RedeemRequest struct {
	Token           string  `json:"token" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
}
