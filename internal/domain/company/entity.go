package company

import (
	"time"

	"github.com/google/uuid"
)

// Company is a B2B customer holding prepaid wallets.
type Company struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ContactInfo *string   `db:"contact_info" json:"contact_info,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Wallets []WalletSummary `json:"wallets,omitempty"`
}

// WalletSummary is the compact wallet view embedded in company listings.
// Recent activity is attached on single-company reads only.
type WalletSummary struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Type    string    `db:"type" json:"type"`
	Balance float64   `db:"balance" json:"balance"`
	QRToken string    `db:"qr_token" json:"qr_token"`

	RecentTopups []TopupRow `json:"recent_topups,omitempty"`
	RecentUsage  []UsageRow `json:"recent_usage,omitempty"`
}

// TopupRow is one credit entry in a company's recent activity.
type TopupRow struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AmountAdded float64   `db:"amount_added" json:"amount_added"`
	Kind        string    `db:"kind" json:"kind"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UsageRow is one debit entry in a company's recent activity.
type UsageRow struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AmountDeducted  float64   `db:"amount_deducted" json:"amount_deducted"`
	DurationMinutes *int      `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Kind            string    `db:"kind" json:"kind"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the payload for company creation.
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	ContactInfo *string `json:"contact_info"`
}

// UpdateRequest is the payload for company updates.
type UpdateRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	ContactInfo *string `json:"contact_info"`
}
