package favorites_test

import (
	"errors"
	"path/filepath"
	"testing"

	"cineday/internal/database"
	"cineday/models"
	"cineday/services/favorites"
)

func setupService(t *testing.T) *favorites.Service {
	t.Helper()
	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "favorites.db"),
	})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return favorites.NewService(database.NewFavoriteRepository(db.Connection()))
}

func TestAddListRemoveMovie(t *testing.T) {
	svc := setupService(t)

	added, err := svc.AddMovie(models.FavoriteMovie{
		MovieKey: "Dune-2021",
		Title:    "Dune",
	})
	if err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	if added.AddedAt.IsZero() {
		t.Fatal("expected AddedAt to be set")
	}

	favs, err := svc.ListMovies()
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(favs) != 1 || favs[0].MovieKey != "Dune-2021" {
		t.Fatalf("unexpected favorites %+v", favs)
	}

	isFav, err := svc.IsMovieFavorite("Dune-2021")
	if err != nil || !isFav {
		t.Fatalf("expected favorite membership, got %v %v", isFav, err)
	}

	removed, err := svc.RemoveMovie("Dune-2021")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	if favs, _ := svc.ListMovies(); len(favs) != 0 {
		t.Fatalf("expected empty favorites, got %+v", favs)
	}
}

func TestAddMovieRequiresKey(t *testing.T) {
	svc := setupService(t)

	_, err := svc.AddMovie(models.FavoriteMovie{Title: "Sans clé"})
	if !errors.Is(err, favorites.ErrMovieKeyRequired) {
		t.Fatalf("expected ErrMovieKeyRequired, got %v", err)
	}

	if _, err := svc.RemoveMovie("  "); !errors.Is(err, favorites.ErrMovieKeyRequired) {
		t.Fatalf("expected ErrMovieKeyRequired on blank removal, got %v", err)
	}
}

func TestCinemas(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.AddCinema("  UGC Lyon "); err != nil {
		t.Fatalf("add cinema returned error: %v", err)
	}

	favs, err := svc.ListCinemas()
	if err != nil {
		t.Fatalf("list cinemas returned error: %v", err)
	}
	if len(favs) != 1 || favs[0].Name != "UGC Lyon" {
		t.Fatalf("expected trimmed cinema name, got %+v", favs)
	}

	if _, err := svc.AddCinema(""); !errors.Is(err, favorites.ErrCinemaNameRequired) {
		t.Fatalf("expected ErrCinemaNameRequired, got %v", err)
	}

	removed, err := svc.RemoveCinema("UGC Lyon")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
}
