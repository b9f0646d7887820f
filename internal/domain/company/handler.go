package company

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
	companies, err := h.repo.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, companies)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid company id")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "company not found")
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

	now := time.Now()
	c := &Company{
		ID:          uuid.New(),
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, ErrNameTaken) {
			response.Conflict(w, "company name already exists")
			return
		}
		response.InternalError(w)
		return
	}

	c.Wallets = []WalletSummary{}
	response.Created(w, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid company id")
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

	c := &Company{ID: id, Name: req.Name, ContactInfo: req.ContactInfo}
	if err := h.repo.Update(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "company not found")
		case errors.Is(err, ErrNameTaken):
			response.Conflict(w, "company name already exists")
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
		response.BadRequest(w, "invalid company id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "company not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": "company deleted"})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/{id}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
