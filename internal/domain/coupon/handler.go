package coupon

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pierpay/pierpay-api/internal/domain/campaign"
	"github.com/pierpay/pierpay-api/internal/middleware"
	"github.com/pierpay/pierpay-api/internal/pkg/response"
	"github.com/pierpay/pierpay-api/internal/pkg/validator"
)

const redemptionHistoryLimit = 100

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		response.BadRequest(w, "invalid campaign_id")
		return
	}

	coupons, err := h.service.Generate(r.Context(), campaignID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrLimitExceeded):
			response.Conflict(w, "campaign coupon limit exceeded")
		case errors.Is(err, campaign.ErrNotFound):
			response.NotFound(w, "campaign not found")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, coupons)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var campaignID *uuid.UUID
	if v := r.URL.Query().Get("campaign_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "invalid campaign_id")
			return
		}
		campaignID = &id
	}

	coupons, err := h.service.List(r.Context(), campaignID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, coupons)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid coupon id")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "coupon not found")
			return
		}
		response.InternalError(w)
		return
	}

	dataURL, err := h.service.QRDataURL(c)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"coupon":           c,
		"qr_code_data_url": dataURL,
	})
}

func (h *Handler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	c, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "coupon not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, c)
}

// Validate checks a coupon without redeeming. Always 200; the outcome is
// carried in the body.
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

	result, err := h.service.Validate(r.Context(), req.Code)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, result)
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

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.Redeem(r.Context(), req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(w, http.StatusNotFound, ReasonNotFound, "coupon not found")
		case errors.Is(err, ErrAlreadyUsed):
			response.BadRequestCode(w, ReasonAlreadyUsed, "coupon already used")
		case errors.Is(err, ErrExpired):
			response.BadRequestCode(w, ReasonExpired, "coupon expired")
		case errors.Is(err, ErrNotStarted):
			response.BadRequestCode(w, ReasonNotStarted, "campaign has not started")
		case errors.Is(err, ErrCampaignEnded):
			response.BadRequestCode(w, ReasonCampaignEnded, "campaign has ended")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, result)
}

// RedemptionHistory lists redemptions: staff see their own, admins see
// everything.
func (h *Handler) RedemptionHistory(w http.ResponseWriter, r *http.Request) {
	filter := RedemptionFilter{Limit: redemptionHistoryLimit}
	if middleware.GetRole(r.Context()) != middleware.RoleAdmin {
		userID := middleware.GetUserID(r.Context())
		filter.UserID = &userID
	}

	logs, err := h.service.ListRedemptions(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, logs)
}

// Routes serves coupon management and lookup.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Get("/code/{code}", h.GetByCode)
	r.Get("/{id}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Post("/generate", h.Generate)
	})
	return r
}

// RedemptionRoutes serves the scan-and-redeem flow.
func (h *Handler) RedemptionRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/validate", h.Validate)
	r.Post("/redeem", h.Redeem)
	r.Get("/history", h.RedemptionHistory)
	return r
}
