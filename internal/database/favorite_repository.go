package database

import (
	"database/sql"
	"fmt"
	"time"

	"cineday/models"
)

// FavoriteRepository persists favorite movies (by identity key) and favorite
// cinemas (by name).
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a repository over an open connection.
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// UpsertMovie inserts or refreshes a favorite movie. AddedAt is preserved on
// conflict; title and poster are updated to the latest values.
func (r *FavoriteRepository) UpsertMovie(fav *models.FavoriteMovie) error {
	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO favorite_movies (movie_key, title, poster_url, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(movie_key) DO UPDATE SET title = excluded.title, poster_url = excluded.poster_url`,
		fav.MovieKey, fav.Title, fav.PosterURL, fav.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert favorite movie: %w", err)
	}
	return nil
}

// RemoveMovie deletes a favorite movie, reporting whether it existed.
func (r *FavoriteRepository) RemoveMovie(movieKey string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM favorite_movies WHERE movie_key = ?`, movieKey)
	if err != nil {
		return false, fmt.Errorf("remove favorite movie: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListMovies returns all favorite movies, newest first.
func (r *FavoriteRepository) ListMovies() ([]models.FavoriteMovie, error) {
	rows, err := r.db.Query(`
		SELECT movie_key, title, poster_url, added_at
		FROM favorite_movies ORDER BY added_at DESC, movie_key`)
	if err != nil {
		return nil, fmt.Errorf("list favorite movies: %w", err)
	}
	defer rows.Close()

	var favs []models.FavoriteMovie
	for rows.Next() {
		var fav models.FavoriteMovie
		if err := rows.Scan(&fav.MovieKey, &fav.Title, &fav.PosterURL, &fav.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite movie: %w", err)
		}
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}

// IsMovieFavorite reports whether the identity key is favorited.
func (r *FavoriteRepository) IsMovieFavorite(movieKey string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM favorite_movies WHERE movie_key = ?`, movieKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query favorite movie: %w", err)
	}
	return true, nil
}

// UpsertCinema inserts a favorite cinema; an existing entry keeps its
// original added_at.
func (r *FavoriteRepository) UpsertCinema(fav *models.FavoriteCinema) error {
	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO favorite_cinemas (name, added_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING`,
		fav.Name, fav.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert favorite cinema: %w", err)
	}
	return nil
}

// RemoveCinema deletes a favorite cinema, reporting whether it existed.
func (r *FavoriteRepository) RemoveCinema(name string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM favorite_cinemas WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("remove favorite cinema: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCinemas returns all favorite cinemas sorted by name.
func (r *FavoriteRepository) ListCinemas() ([]models.FavoriteCinema, error) {
	rows, err := r.db.Query(`SELECT name, added_at FROM favorite_cinemas ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list favorite cinemas: %w", err)
	}
	defer rows.Close()

	var favs []models.FavoriteCinema
	for rows.Next() {
		var fav models.FavoriteCinema
		if err := rows.Scan(&fav.Name, &fav.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite cinema: %w", err)
		}
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}

// IsCinemaFavorite reports whether the cinema name is favorited.
func (r *FavoriteRepository) IsCinemaFavorite(name string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM favorite_cinemas WHERE name = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query favorite cinema: %w", err)
	}
	return true, nil
}
