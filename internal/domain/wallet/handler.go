package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pierpay/pierpay-api/internal/middleware"
	"github.com/pierpay/pierpay-api/internal/pkg/response"
	"github.com/pierpay/pierpay-api/internal/pkg/validator"
)

const (
	defaultLogLimit    = 100
	myRedemptionsLimit = 50
)

type Handler struct {
	service       *Service
	publicBaseURL string
}

func NewHandler(service *Service, publicBaseURL string) *Handler {
	return &Handler{service: service, publicBaseURL: publicBaseURL}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	if v := r.URL.Query().Get("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "invalid company_id")
			return
		}
		filter.CompanyID = &id
	}
	if v := r.URL.Query().Get("type"); v != "" {
		if !IsValidType(v) {
			response.BadRequest(w, "invalid wallet type")
			return
		}
		t := Type(v)
		filter.Type = &t
	}

	wallets, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, wallets)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	wal, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, wal)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		response.BadRequest(w, "invalid company_id")
		return
	}
	adminID := middleware.GetUserID(r.Context())

	wal, err := h.service.Create(r.Context(), companyID, Type(req.Type), req.InitialBalance, adminID)
	if err != nil {
		switch {
		case errors.Is(err, ErrWalletExists):
			response.Conflict(w, "company already has a wallet of this type")
		case errors.Is(err, ErrFractionalTrips):
			response.BadRequest(w, "boat wallet balance must be a whole number of trips")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "initial balance must not be negative")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, wal)
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	var req AdjustBalanceRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	adminID := middleware.GetUserID(r.Context())
	result, err := h.service.AdjustBalance(r.Context(), id, *req.Balance, adminID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "wallet not found")
		case errors.Is(err, ErrFractionalTrips):
			response.BadRequest(w, "boat wallet balance must be a whole number of trips")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "balance must not be negative")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, result)
}

func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	var req ReassignRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		response.BadRequest(w, "invalid company_id")
		return
	}

	if err := h.service.ReassignCompany(r.Context(), id, companyID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "wallet not found")
		case errors.Is(err, ErrWalletExists):
			response.Conflict(w, "company already has a wallet of this type")
		default:
			response.InternalError(w)
		}
		return
	}

	wal, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, wal)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": "wallet deleted"})
}

// ResolveToken looks a wallet up by scanned token for the staff scanner.
func (h *Handler) ResolveToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	wal, err := h.service.ResolveByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, Info{
		ID:      wal.ID,
		Type:    wal.Type,
		Balance: wal.Balance,
		Company: CompanyRef{ID: wal.CompanyID, Name: wal.CompanyName},
	})
}

// QRCode returns the printable QR image for the permanent token.
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	wal, dataURL, err := h.service.PermanentQR(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"wallet_id":        wal.ID,
		"qr_token":         wal.QRToken,
		"qr_code_data_url": dataURL,
	})
}

func (h *Handler) Topup(w http.ResponseWriter, r *http.Request) {
	var req TopupRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		response.BadRequest(w, "invalid wallet_id")
		return
	}
	adminID := middleware.GetUserID(r.Context())

	result, err := h.service.Topup(r.Context(), walletID, req.Amount, adminID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "wallet not found")
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequestCode(w, ReasonInvalidAmount, "amount must be greater than 0")
		case errors.Is(err, ErrFractionalTrips):
			response.BadRequest(w, "boat wallet topup must be a whole number of trips")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, result)
}

func (h *Handler) ListTopupLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListTopups(r.Context(), LogFilter{Limit: defaultLogLimit})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

func (h *Handler) ListWalletTopupLogs(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuid.Parse(chi.URLParam(r, "walletId"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	logs, err := h.service.ListTopups(r.Context(), LogFilter{WalletID: &walletID, Limit: defaultLogLimit})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

// Validate runs the advisory pre-debit check. Always 200; the outcome is
// carried in the body so the scanner can render the reason.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.service.ValidateUse(r.Context(), req.Token, req.Amount)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// Use debits a wallet addressed by id, for flows where the wallet was
// already resolved (e.g. after a token lookup).
func (h *Handler) Use(w http.ResponseWriter, r *http.Request) {
	var req UseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		response.BadRequest(w, "invalid wallet_id")
		return
	}
	staffID := middleware.GetUserID(r.Context())

	result, err := h.service.Use(r.Context(), walletID, req.Amount, req.DurationMinutes, staffID)
	if err != nil {
		h.writeUseError(w, err)
		return
	}
	response.Created(w, result)
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	staffID := middleware.GetUserID(r.Context())
	result, err := h.service.RedeemByToken(r.Context(), req.Token, req.Amount, req.DurationMinutes, staffID)
	if err != nil {
		h.writeUseError(w, err)
		return
	}
	response.Created(w, result)
}

func (h *Handler) writeUseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, ReasonNotFound, "wallet not found")
	case errors.Is(err, ErrTokenExpired):
		response.BadRequestCode(w, ReasonTokenExpired, "display token expired, rescan the wallet page")
	case errors.Is(err, ErrInsufficientBalance):
		response.BadRequestCode(w, ReasonInsufficientBalance, "insufficient wallet balance")
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequestCode(w, ReasonInvalidAmount, "amount must be greater than 0")
	case errors.Is(err, ErrFractionalTrips):
		response.BadRequestCode(w, ReasonInvalidAmount, "boat wallet usage must be a whole number of trips")
	case errors.Is(err, ErrInvalidDuration):
		response.BadRequest(w, "duration must be 0 or greater")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) ListUsageLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListUsage(r.Context(), LogFilter{Limit: defaultLogLimit})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

func (h *Handler) ListWalletUsageLogs(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuid.Parse(chi.URLParam(r, "walletId"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	logs, err := h.service.ListUsage(r.Context(), LogFilter{WalletID: &walletID, Limit: defaultLogLimit})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

// MyRedemptions lists the caller's own debit history.
func (h *Handler) MyRedemptions(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetUserID(r.Context())
	if staffID == uuid.Nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	logs, err := h.service.ListUsage(r.Context(), LogFilter{ActorID: &staffID, Limit: myRedemptionsLimit})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

// PublicWallet serves the unauthenticated wallet page with a fresh
// display-token QR.
func (h *Handler) PublicWallet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "walletId"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	view, err := h.service.PublicWallet(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, view)
}

// PublicTopupHistory serves the bare credit history on the public page.
func (h *Handler) PublicTopupHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "walletId"))
	if err != nil {
		response.BadRequest(w, "invalid wallet id")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	logs, err := h.service.PublicTopupHistory(r.Context(), id, limit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

// PublicQRRedirect resolves a scanned display token and forwards the
// browser to the wallet page.
func (h *Handler) PublicQRRedirect(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "displayToken")
	wal, err := h.service.ResolveByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "wallet not found")
			return
		}
		response.InternalError(w)
		return
	}

	http.Redirect(w, r, h.publicBaseURL+"/public/wallets/"+wal.ID.String(), http.StatusFound)
}

// Routes serves authenticated wallet management.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/qr/{token}", h.ResolveToken)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/qrcode", h.QRCode)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}/balance", h.AdjustBalance)
		r.Put("/{id}/company", h.Reassign)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// TopupRoutes serves the credit side of the ledger.
func (h *Handler) TopupRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())
	r.Post("/", h.Topup)
	r.Get("/", h.ListTopupLogs)
	r.Get("/wallet/{walletId}", h.ListWalletTopupLogs)
	return r
}

// UsageRoutes serves the debit side of the ledger.
func (h *Handler) UsageRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Use)
	r.Post("/validate", h.Validate)
	r.Post("/redeem", h.Redeem)
	r.Get("/my-redemptions", h.MyRedemptions)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/", h.ListUsageLogs)
		r.Get("/wallet/{walletId}", h.ListWalletUsageLogs)
	})
	return r
}

// PublicRoutes serves the unauthenticated wallet surface.
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/wallets/{walletId}", h.PublicWallet)
	r.Get("/wallets/{walletId}/topup-history", h.PublicTopupHistory)
	r.Get("/qr/{displayToken}", h.PublicQRRedirect)
	return r
}
