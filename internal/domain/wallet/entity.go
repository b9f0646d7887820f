package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes the two prepaid resource kinds.
type Type string

const (
	TypeFuel Type = "FUEL" // balance in liters, fractional
	TypeBoat Type = "BOAT" // balance in whole trips
)

// IsValidType reports whether the string is a known wallet type.
func IsValidType(t string) bool {
	return t == string(TypeFuel) || t == string(TypeBoat)
}

// LogKind tags audit rows with the operation that produced them.
type LogKind string

const (
	LogKindTopup      LogKind = "topup"
	LogKindUsage      LogKind = "usage"
	LogKindAdjustment LogKind = "adjustment"
)

// Wallet is a per-company, per-type prepaid balance account.
type Wallet struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	CompanyID            uuid.UUID  `db:"company_id" json:"company_id"`
	Type                 Type       `db:"type" json:"type"`
	Balance              float64    `db:"balance" json:"balance"`
	QRToken              string     `db:"qr_token" json:"qr_token"`
	QRDisplayToken       *string    `db:"qr_display_token" json:"qr_display_token,omitempty"`
	QRDisplayTokenExpiry *time.Time `db:"qr_display_token_expiry" json:"qr_display_token_expiry,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`

	CompanyName string `db:"company_name" json:"company_name,omitempty"`
}

// CompanyRef is the owning-company view embedded in scan/validate responses.
type CompanyRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Info is the wallet identity surfaced to staff during a scan.
type Info struct {
	ID      uuid.UUID  `json:"id"`
	Type    Type       `json:"type"`
	Balance float64    `json:"balance"`
	Company CompanyRef `json:"company"`
}

// TopupLog is one credit-side audit row. Append-only.
type TopupLog struct {
	ID          uuid.UUID `db:"id" json:"id"`
	WalletID    uuid.UUID `db:"wallet_id" json:"wallet_id"`
	AmountAdded float64   `db:"amount_added" json:"amount_added"`
	Kind        LogKind   `db:"kind" json:"kind"`
	AdminID     uuid.UUID `db:"admin_id" json:"admin_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	AdminName   string `db:"admin_name" json:"admin_name,omitempty"`
	AdminEmail  string `db:"admin_email" json:"admin_email,omitempty"`
	CompanyName string `db:"company_name" json:"company_name,omitempty"`
}

// UsageLog is one debit-side audit row. Append-only.
type UsageLog struct {
	ID              uuid.UUID `db:"id" json:"id"`
	WalletID        uuid.UUID `db:"wallet_id" json:"wallet_id"`
	AmountDeducted  float64   `db:"amount_deducted" json:"amount_deducted"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Kind            LogKind   `db:"kind" json:"kind"`
	StaffID         uuid.UUID `db:"staff_id" json:"staff_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	StaffName   string `db:"staff_name" json:"staff_name,omitempty"`
	StaffEmail  string `db:"staff_email" json:"staff_email,omitempty"`
	CompanyName string `db:"company_name" json:"company_name,omitempty"`
}

// LogFilter narrows admin log listings.
type LogFilter struct {
	WalletID *uuid.UUID
	ActorID  *uuid.UUID
	Limit    int
}

// ListFilter narrows wallet listings.
type ListFilter struct {
	CompanyID *uuid.UUID
	Type      *Type
}
