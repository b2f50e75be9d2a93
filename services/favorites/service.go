package favorites

import (
	"errors"
	"strings"

	"cineday/internal/database"
	"cineday/models"
)

var (
	ErrMovieKeyRequired   = errors.New("favorites: movie key is required")
	ErrCinemaNameRequired = errors.New("favorites: cinema name is required")
)

// Service is the app-facing favorites capability: persist and query the set
// of favorited movie identities and cinema names.
type Service struct {
	repo *database.FavoriteRepository
}

// NewService creates the favorites service over its repository.
func NewService(repo *database.FavoriteRepository) *Service {
	return &Service{repo: repo}
}

// AddMovie favorites a movie by identity key. Adding an existing favorite
// refreshes its title and poster.
func (s *Service) AddMovie(fav models.FavoriteMovie) (models.FavoriteMovie, error) {
	fav.MovieKey = strings.TrimSpace(fav.MovieKey)
	if fav.MovieKey == "" {
		return models.FavoriteMovie{}, ErrMovieKeyRequired
	}
	if err := s.repo.UpsertMovie(&fav); err != nil {
		return models.FavoriteMovie{}, err
	}
	return fav, nil
}

// RemoveMovie unfavorites a movie, reporting whether it was favorited.
func (s *Service) RemoveMovie(movieKey string) (bool, error) {
	movieKey = strings.TrimSpace(movieKey)
	if movieKey == "" {
		return false, ErrMovieKeyRequired
	}
	return s.repo.RemoveMovie(movieKey)
}

// ListMovies returns all favorited movies.
func (s *Service) ListMovies() ([]models.FavoriteMovie, error) {
	return s.repo.ListMovies()
}

// IsMovieFavorite reports membership for a movie identity key.
func (s *Service) IsMovieFavorite(movieKey string) (bool, error) {
	return s.repo.IsMovieFavorite(strings.TrimSpace(movieKey))
}

// AddCinema favorites a cinema by name.
func (s *Service) AddCinema(name string) (models.FavoriteCinema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.FavoriteCinema{}, ErrCinemaNameRequired
	}
	fav := models.FavoriteCinema{Name: name}
	if err := s.repo.UpsertCinema(&fav); err != nil {
		return models.FavoriteCinema{}, err
	}
	return fav, nil
}

// RemoveCinema unfavorites a cinema, reporting whether it was favorited.
func (s *Service) RemoveCinema(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrCinemaNameRequired
	}
	return s.repo.RemoveCinema(name)
}

// ListCinemas returns all favorited cinemas.
func (s *Service) ListCinemas() ([]models.FavoriteCinema, error) {
	return s.repo.ListCinemas()
}

// IsCinemaFavorite reports membership for a cinema name.
func (s *Service) IsCinemaFavorite(name string) (bool, error) {
	return s.repo.IsCinemaFavorite(strings.TrimSpace(name))
}
