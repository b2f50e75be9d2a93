package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cineday/models"
	"cineday/services/catalog"

	"github.com/gorilla/mux"
)

type catalogService interface {
	Load(ctx context.Context) error
	Status() catalog.Status
	ClearSnapshot() error
	Movies() []models.Movie
	MovieByKey(key string) (models.Movie, bool)
	MoviesForDateKey(key string) []models.Movie
	DatesWithShowtimes() []string
	Search(query string) []models.Movie
	FilterMovies(f catalog.Filter) []models.Movie
}

var _ catalogService = (*catalog.Service)(nil)

// CatalogHandler exposes the synchronized catalog and its query operations.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// Status reports the coordinator state, freshness and counts.
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Status())
}

// Refresh runs a full load and reports the resulting status. A load that
// fell back to the snapshot is still a success from the caller's side.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Load(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusForError(err, http.StatusBadGateway))
		json.NewEncoder(w).Encode(h.Service.Status())
		return
	}
	writeJSON(w, h.Service.Status())
}

// ClearCache deletes the persisted snapshot.
func (h *CatalogHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearSnapshot(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Movies returns the deduplicated movie list.
func (h *CatalogHandler) Movies(w http.ResponseWriter, r *http.Request) {
	writeMovies(w, h.Service.Movies())
}

// Movie returns one movie from the deduplicated list by identity key.
func (h *CatalogHandler) Movie(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	m, ok := h.Service.MovieByKey(key)
	if !ok {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}
	writeJSON(w, m)
}

// Search matches the q parameter against title, director and genres.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	writeMovies(w, h.Service.Search(r.URL.Query().Get("q")))
}

// FilterMovies applies the optional query-parameter predicates.
func (h *CatalogHandler) FilterMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Genre:    q.Get("genre"),
		Director: q.Get("director"),
		Year:     q.Get("year"),
		Cinema:   q.Get("cinema"),
	}
	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "minRating must be numeric", http.StatusBadRequest)
			return
		}
		f.MinRating = &rating
	}
	if v := q.Get("rerelease"); v != "" {
		rerelease, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "rerelease must be a boolean", http.StatusBadRequest)
			return
		}
		f.Rereleased = &rerelease
	}
	writeMovies(w, h.Service.FilterMovies(f))
}

// Dates lists the date keys that have showtimes.
func (h *CatalogHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates := h.Service.DatesWithShowtimes()
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, map[string][]string{"dates": dates})
}

// MoviesForDate returns the programming for one date key. An unknown date is
// an empty list; a malformed date is a client error.
func (h *CatalogHandler) MoviesForDate(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["date"]
	if _, err := time.ParseInLocation(models.DateKeyLayout, key, models.CatalogZone); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	writeMovies(w, h.Service.MoviesForDateKey(key))
}

func writeMovies(w http.ResponseWriter, movies []models.Movie) {
	if movies == nil {
		movies = []models.Movie{}
	}
	writeJSON(w, movies)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// mapped here so every handler file shares one helper
func statusForError(err error, fallback int) int {
	var httpErr *catalog.HTTPStatusError
	switch {
	case errors.As(err, &httpErr), errors.Is(err, catalog.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, catalog.ErrDecode):
		return http.StatusBadGateway
	default:
		return fallback
	}
}
