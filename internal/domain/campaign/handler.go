package campaign

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pierpay/pierpay-api/internal/middleware"
	"github.com/pierpay/pierpay-api/internal/pkg/response"
	"github.com/pierpay/pierpay-api/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, campaigns)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "campaign not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, c)
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

	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	now := time.Now()
	c := &Campaign{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		TotalLimit:  req.TotalLimit,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	c := &Campaign{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		TotalLimit:  req.TotalLimit,
		StartDate:   start,
		EndDate:     end,
	}
	if err := h.repo.Update(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "campaign not found")
		case errors.Is(err, ErrLimitTooSmall):
			response.Conflict(w, "total limit is below the generated coupon count")
		default:
			response.InternalError(w)
		}
		return
	}

	updated, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "campaign not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": "campaign deleted"})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return
	}

	stats, err := h.repo.GetStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "campaign not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

func parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be RFC 3339")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}
	return start, end, nil
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/stats", h.Stats)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
