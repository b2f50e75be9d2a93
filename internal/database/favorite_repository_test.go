package database

import (
	"path/filepath"
	"testing"

	"cineday/models"

	"github.com/stretchr/testify/require"
)

// setupTestDB creates a throwaway database with migrations applied.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	require.NoError(t, err, "create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFavoriteMovieUpsertListRemove(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t).Connection())

	err := repo.UpsertMovie(&models.FavoriteMovie{
		MovieKey:  "Dune-2021",
		Title:     "Dune",
		PosterURL: "https://poster",
	})
	require.NoError(t, err)

	favs, err := repo.ListMovies()
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, "Dune-2021", favs[0].MovieKey)
	require.False(t, favs[0].AddedAt.IsZero(), "added_at must be set")

	ok, err := repo.IsMovieFavorite("Dune-2021")
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := repo.RemoveMovie("Dune-2021")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.RemoveMovie("Dune-2021")
	require.NoError(t, err)
	require.False(t, removed, "second removal must report absence")

	ok, err = repo.IsMovieFavorite("Dune-2021")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFavoriteMovieUpsertRefreshesMetadata(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t).Connection())

	require.NoError(t, repo.UpsertMovie(&models.FavoriteMovie{MovieKey: "Dune-2021", Title: "Dune"}))

	first, err := repo.ListMovies()
	require.NoError(t, err)

	require.NoError(t, repo.UpsertMovie(&models.FavoriteMovie{
		MovieKey:  "Dune-2021",
		Title:     "Dune",
		PosterURL: "https://poster/v2",
	}))

	favs, err := repo.ListMovies()
	require.NoError(t, err)
	require.Len(t, favs, 1, "upsert must not duplicate")
	require.Equal(t, "https://poster/v2", favs[0].PosterURL)
	require.Equal(t, first[0].AddedAt, favs[0].AddedAt, "added_at preserved on conflict")
}

func TestFavoriteCinemas(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t).Connection())

	require.NoError(t, repo.UpsertCinema(&models.FavoriteCinema{Name: "UGC Lyon"}))
	require.NoError(t, repo.UpsertCinema(&models.FavoriteCinema{Name: "Comoedia"}))
	require.NoError(t, repo.UpsertCinema(&models.FavoriteCinema{Name: "UGC Lyon"}))

	favs, err := repo.ListCinemas()
	require.NoError(t, err)
	require.Len(t, favs, 2)
	require.Equal(t, "Comoedia", favs[0].Name, "sorted by name")

	ok, err := repo.IsCinemaFavorite("Comoedia")
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := repo.RemoveCinema("Comoedia")
	require.NoError(t, err)
	require.True(t, removed)

	ok, err = repo.IsCinemaFavorite("Comoedia")
	require.NoError(t, err)
	require.False(t, ok)
}
