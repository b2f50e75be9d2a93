package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cineday/models"
	"cineday/services/favorites"

	"github.com/gorilla/mux"
)

type favoritesService interface {
	AddMovie(fav models.FavoriteMovie) (models.FavoriteMovie, error)
	RemoveMovie(movieKey string) (bool, error)
	ListMovies() ([]models.FavoriteMovie, error)
	AddCinema(name string) (models.FavoriteCinema, error)
	RemoveCinema(name string) (bool, error)
	ListCinemas() ([]models.FavoriteCinema, error)
}

var _ favoritesService = (*favorites.Service)(nil)

// FavoritesHandler exposes the favorites capability.
type FavoritesHandler struct {
	Service favoritesService
}

func NewFavoritesHandler(service favoritesService) *FavoritesHandler {
	return &FavoritesHandler{Service: service}
}

func (h *FavoritesHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	favs, err := h.Service.ListMovies()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if favs == nil {
		favs = []models.FavoriteMovie{}
	}
	writeJSON(w, favs)
}

func (h *FavoritesHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	var body models.FavoriteMovie
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fav, err := h.Service.AddMovie(body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrMovieKeyRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, fav)
}

func (h *FavoritesHandler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.RemoveMovie(mux.Vars(r)["key"])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrMovieKeyRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoritesHandler) ListCinemas(w http.ResponseWriter, r *http.Request) {
	favs, err := h.Service.ListCinemas()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if favs == nil {
		favs = []models.FavoriteCinema{}
	}
	writeJSON(w, favs)
}

func (h *FavoritesHandler) AddCinema(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fav, err := h.Service.AddCinema(body.Name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrCinemaNameRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, fav)
}

func (h *FavoritesHandler) RemoveCinema(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.RemoveCinema(mux.Vars(r)["name"])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrCinemaNameRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
