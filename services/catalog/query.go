package catalog

import (
	"strings"
	"time"

	"cineday/models"

	"github.com/mozillazg/go-unidecode"
)

// Filter is a conjunction of optional predicates over the deduplicated movie
// list. Zero-valued fields impose no constraint.
type Filter struct {
	Genre      string   // exact genre, case-insensitive
	Director   string   // substring of the director name
	MinRating  *float64 // minimum numeric rating
	Year       string   // exact release year
	Cinema     string   // substring of any cinema name showing the movie
	Rereleased *bool    // re-release flag match
}

// Movies returns the deduplicated movie list: all days flattened in catalog
// day order, first occurrence per identity key wins. Order is "first seen
// across days", not title order.
func (s *Service) Movies() []models.Movie {
	return dedupMovies(s.Catalog())
}

func dedupMovies(cat *models.Catalog) []models.Movie {
	if cat == nil {
		return nil
	}
	seen := make(map[string]bool)
	var movies []models.Movie
	for _, day := range cat.Days {
		for _, m := range day.Movies {
			key := m.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			movies = append(movies, m)
		}
	}
	return movies
}

// MovieByKey looks a movie up in the deduplicated list by identity key.
func (s *Service) MovieByKey(key string) (models.Movie, bool) {
	for _, m := range s.Movies() {
		if m.Key() == key {
			return m, true
		}
	}
	return models.Movie{}, false
}

// MoviesForDate returns the programming for the day containing t, in the
// catalog zone.
func (s *Service) MoviesForDate(t time.Time) []models.Movie {
	return s.MoviesForDateKey(models.CanonicalDateKey(t))
}

// MoviesForDateKey returns the programming for an exact date key. A date
// absent from the catalog is an empty list, not an error.
func (s *Service) MoviesForDateKey(key string) []models.Movie {
	cat := s.Catalog()
	if cat == nil {
		return []models.Movie{}
	}
	for _, day := range cat.Days {
		if day.Date == key {
			return day.Movies
		}
	}
	return []models.Movie{}
}

// DatesWithShowtimes returns the date keys of every day with at least one
// movie programmed, in catalog order. Keys are unique per the day invariant.
func (s *Service) DatesWithShowtimes() []string {
	cat := s.Catalog()
	if cat == nil {
		return nil
	}
	var dates []string
	for _, day := range cat.Days {
		if len(day.Movies) > 0 {
			dates = append(dates, day.Date)
		}
	}
	return dates
}

// Search matches the query as a substring of title, director or raw genre
// text over the deduplicated list, ignoring case and diacritics. An empty
// query returns the full deduplicated list unchanged.
func (s *Service) Search(query string) []models.Movie {
	movies := s.Movies()
	q := foldText(query)
	if q == "" {
		return movies
	}
	var matched []models.Movie
	for _, m := range movies {
		if strings.Contains(foldText(m.Title), q) ||
			strings.Contains(foldText(m.Director), q) ||
			strings.Contains(foldText(m.GenreText), q) {
			matched = append(matched, m)
		}
	}
	return matched
}

// FilterMovies applies the filter predicates over the deduplicated list.
// With no predicates set it returns the full list.
func (s *Service) FilterMovies(f Filter) []models.Movie {
	movies := s.Movies()
	matched := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if matchesFilter(m, f) {
			matched = append(matched, m)
		}
	}
	return matched
}

func matchesFilter(m models.Movie, f Filter) bool {
	if f.Genre != "" {
		found := false
		for _, g := range m.Genres() {
			if strings.EqualFold(g, f.Genre) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Director != "" && !strings.Contains(foldText(m.Director), foldText(f.Director)) {
		return false
	}
	if f.MinRating != nil && m.RatingValue() < *f.MinRating {
		return false
	}
	if f.Year != "" && strings.TrimSpace(m.ReleaseYear) != f.Year {
		return false
	}
	if f.Cinema != "" {
		found := false
		for name := range m.Showtimes {
			if strings.Contains(foldText(name), foldText(f.Cinema)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Rereleased != nil && m.IsRerelease() != *f.Rereleased {
		return false
	}
	return true
}

// foldText lowercases and strips diacritics so that "Amélie" matches
// "amelie". The upstream catalog is French-language text.
func foldText(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}
