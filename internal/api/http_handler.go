package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/domain"
)

// SnapshotSource publishes the outcome of the startup fetch.
type SnapshotSource interface {
	Snapshot() catalog.Snapshot
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog  SnapshotSource
	sessions *SessionRegistry
	metrics  *Metrics
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(src SnapshotSource, sessions *SessionRegistry, metrics *Metrics, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:  src,
		sessions: sessions,
		metrics:  metrics,
		validate: validator.New(),
		log:      log,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// withSession resolves {sessionId} and runs fn under the session lock.
// It answers 503 while the catalog is still loading.
func (h *HTTPHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(s *Session, c *catalog.Controller)) {
	if h.catalog.Snapshot().Status == catalog.StatusLoading {
		h.respondWithError(w, http.StatusServiceUnavailable, "Catalog is still loading")
		return
	}
	s, err := h.sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		// Get drops a session that expired since the last sweep.
		h.metrics.SetActiveSessions(h.sessions.Len())
		h.respondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	s.Do(func(c *catalog.Controller) {
		fn(s, c)
	})
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when
// the request carries one, and the parameter is still escaped in that case.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// --- Catalog ---

func (h *HTTPHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, newCatalogResponse(h.catalog.Snapshot()))
}

// --- Sessions ---

func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()
	if snap.Status == catalog.StatusLoading {
		h.respondWithError(w, http.StatusServiceUnavailable, "Catalog is still loading")
		return
	}
	s, err := h.sessions.Create(snap)
	if err != nil {
		if errors.Is(err, ErrTooManySessions) {
			h.respondWithError(w, http.StatusServiceUnavailable, "Too many active sessions, try again later")
			return
		}
		h.log.Error().Err(err).Msg("CreateSession failed")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.metrics.SetActiveSessions(h.sessions.Len())

	var view ViewResponse
	s.Do(func(c *catalog.Controller) {
		view = newViewResponse(s.ID, c)
	})
	h.respondWithJSON(w, http.StatusCreated, view)
}

func (h *HTTPHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sessionId")); err != nil {
		h.respondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.metrics.SetActiveSessions(h.sessions.Len())
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Search, filters, sort ---

// SearchInput defines the expected input for updating the search text.
type SearchInput struct {
	Query string `json:"query" validate:"max=200"`
}

func (h *HTTPHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var input SearchInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.SetSearch(input.Query)
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

// FiltersInput replaces the whole filter criteria. Omitted fields take their defaults.
type FiltersInput struct {
	Category  *string  `json:"category" validate:"omitempty,max=255"`
	Store     *string  `json:"store" validate:"omitempty,max=255"`
	MinPrice  *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price" validate:"omitempty,gte=0"`
	MinRating *float64 `json:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

func (in FiltersInput) criteria() domain.FilterCriteria {
	f := domain.DefaultCriteria()
	f.Category = in.Category
	f.Store = in.Store
	if in.MinPrice != nil {
		f.MinPrice = *in.MinPrice
	}
	if in.MaxPrice != nil {
		f.MaxPrice = *in.MaxPrice
	}
	if in.MinRating != nil {
		f.MinRating = *in.MinRating
	}
	return f
}

func (h *HTTPHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var input FiltersInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.SetFilters(input.criteria())
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ToggleCategory(name)
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ToggleStore(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ToggleStore(name)
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ToggleMinRating(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.ParseFloat(chi.URLParam(r, "rating"), 64)
	if err != nil || rating < 0 || rating > domain.MaxRating {
		h.respondWithError(w, http.StatusBadRequest, "Invalid rating: must be a number between 0 and 5")
		return
	}
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ToggleMinRating(rating)
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

// SortInput defines the expected input for changing the sort order.
type SortInput struct {
	SortBy string `json:"sort_by" validate:"required,oneof=newest price-low price-high rating"`
}

func (h *HTTPHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var input SortInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.SetSort(domain.SortKey(strings.ToLower(input.SortBy)))
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ResetFilters()
		h.respondWithJSON(w, http.StatusOK, newViewResponse(s.ID, c))
	})
}

// --- Comparison ---

func (h *HTTPHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		h.respondWithJSON(w, http.StatusOK, newComparisonResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ToggleComparison(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(pathParam(r, "productId"))
	if id == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		err := c.ToggleComparison(id)
		switch {
		case err == nil:
			h.respondWithJSON(w, http.StatusOK, newComparisonResponse(s.ID, c))
		case errors.Is(err, domain.ErrCapacityExceeded):
			h.metrics.ComparisonRejected()
			h.respondWithError(w, http.StatusConflict, domain.CapacityMessage)
		case errors.Is(err, domain.ErrProductNotFound):
			h.respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrCatalogLoading):
			h.respondWithError(w, http.StatusServiceUnavailable, "Catalog is still loading")
		default:
			h.log.Error().Err(err).Str("session_id", s.ID).Str("product_id", string(id)).Msg("ToggleComparison failed")
			h.respondWithError(w, http.StatusInternalServerError, "Failed to update comparison")
		}
	})
}

func (h *HTTPHandler) ToggleComparisonView(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ToggleComparisonView()
		h.respondWithJSON(w, http.StatusOK, newComparisonResponse(s.ID, c))
	})
}

func (h *HTTPHandler) ClearComparison(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *Session, c *catalog.Controller) {
		c.ClearComparison()
		h.respondWithJSON(w, http.StatusOK, newComparisonResponse(s.ID, c))
	})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the storefront.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/catalog", h.GetCatalog)

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/search", h.SetSearch)
			r.Put("/filters", h.SetFilters)
			r.Post("/filters/category/{name}", h.ToggleCategory)
			r.Post("/filters/store/{name}", h.ToggleStore)
			r.Post("/filters/rating/{rating}", h.ToggleMinRating)
			r.Put("/sort", h.SetSort)
			r.Post("/reset", h.ResetFilters)

			r.Route("/comparison", func(r chi.Router) {
				r.Get("/", h.GetComparison)
				r.Delete("/", h.ClearComparison)
				// Registered before {productId} so "view" is not taken as an id.
				r.Post("/view", h.ToggleComparisonView)
				r.Post("/{productId}", h.ToggleComparison)
			})
		})
	})
}
