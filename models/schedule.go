package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CatalogZone is the time zone of the catalog's home city. Date keys and
// showtime instants are always interpreted in this zone, regardless of where
// the service runs.
var CatalogZone = mustLoadZone("Europe/Paris")

// DateKeyLayout is the canonical form of a schedule day key.
const DateKeyLayout = "2006-01-02"

// StandardFormat is the sentinel used when a showtime carries no format tag.
const StandardFormat = "standard"

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load catalog zone %s: %v", name, err))
	}
	return loc
}

// Catalog is the root payload from the remote source. It is the unit of
// atomic replacement: the coordinator swaps whole catalogs and never merges
// two of them.
type Catalog struct {
	GeneratedAt string        `json:"generated_at"`
	Days        []ScheduleDay `json:"days"`
}

// GeneratedTime parses the source's generation timestamp. The second return
// is false when the timestamp is missing or not RFC3339.
func (c *Catalog) GeneratedTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(c.GeneratedAt))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ScheduleDay is one calendar day's programming. Date keys are unique within
// a catalog; movie order is the catalog's own order.
type ScheduleDay struct {
	Date   string  `json:"date"` // YYYY-MM-DD in the catalog zone
	Movies []Movie `json:"movies"`
}

// Movie is a film with its showtimes aggregated per cinema for one day's
// payload. All text fields come from upstream as-is; the derived accessors
// below parse them best effort.
type Movie struct {
	Title       string                `json:"title"`
	ReleaseYear string                `json:"release_year"` // 4-digit expected, not guaranteed
	Duration    string                `json:"duree"`        // free text, e.g. "3h 17min"
	Rating      string                `json:"rating"`       // free-text numeric
	GenreText   string                `json:"genres"`       // comma separated
	Director    string                `json:"realisateur"`
	Synopsis    string                `json:"synopsis"`
	PosterURL   string                `json:"affiche"`
	WantToSee   int                   `json:"wantToSee"`
	InfoURL     string                `json:"url"`
	Showtimes   map[string][]Showtime `json:"seances"` // cinema name -> ordered showtimes
}

// Key is the movie's identity for favorites and cross-day deduplication.
// Upstream carries no surrogate id, so title plus release year is the whole
// identity; two distinct films sharing both would collide. Kept in one place
// so the rule can change without touching callers.
func (m Movie) Key() string {
	return m.Title + "-" + m.ReleaseYear
}

// Genres splits the raw genre text into trimmed entries.
func (m Movie) Genres() []string {
	if strings.TrimSpace(m.GenreText) == "" {
		return nil
	}
	parts := strings.Split(m.GenreText, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// RatingValue parses the rating text, tolerating a decimal comma. Malformed
// input is zero, never an error.
func (m Movie) RatingValue() float64 {
	s := strings.TrimSpace(strings.ReplaceAll(m.Rating, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// DurationMinutes parses duration text like "3h 17min", "2h" or "45min".
// Parsing is best effort: a malformed segment contributes zero minutes.
func (m Movie) DurationMinutes() int {
	s := strings.ToLower(strings.TrimSpace(m.Duration))
	if s == "" {
		return 0
	}
	total := 0
	rest := s
	if i := strings.Index(rest, "h"); i >= 0 {
		if hours, err := strconv.Atoi(strings.TrimSpace(rest[:i])); err == nil {
			total += hours * 60
		}
		rest = rest[i+1:]
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "min"))
	if rest != "" {
		if minutes, err := strconv.Atoi(rest); err == nil {
			total += minutes
		}
	}
	return total
}

// Cinemas returns the cinema names showing this movie, sorted.
func (m Movie) Cinemas() []string {
	names := make([]string, 0, len(m.Showtimes))
	for name := range m.Showtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowtimeCount is the total number of screenings across all cinemas.
func (m Movie) ShowtimeCount() int {
	count := 0
	for _, sts := range m.Showtimes {
		count += len(sts)
	}
	return count
}

// IsRerelease reports whether the movie is at least five years old relative
// to the current year. A non-numeric release year is never a re-release.
func (m Movie) IsRerelease() bool {
	return m.RereleasedAsOf(time.Now().Year())
}

// RereleasedAsOf is IsRerelease against an explicit reference year.
func (m Movie) RereleasedAsOf(year int) bool {
	release, err := strconv.Atoi(strings.TrimSpace(m.ReleaseYear))
	if err != nil {
		return false
	}
	return year-release >= 5
}

// Showtime is one screening instance.
type Showtime struct {
	Time         string `json:"time"`           // HH:MM, 24-hour
	Lang         string `json:"lang"`           // "VO" or "VF" by convention, not validated
	Format       string `json:"format,omitempty"` // "3D", "IMAX", ... free text
	TicketingURL string `json:"ticketing_url,omitempty"`
}

// Key identifies a showtime within a single day's listing, for list
// deduplication only; it is not a cross-day identity.
func (s Showtime) Key() string {
	format := s.Format
	if format == "" {
		format = StandardFormat
	}
	return s.Time + "|" + s.Lang + "|" + format
}

// At resolves the showtime to an absolute instant on the given date key in
// the catalog zone. A time that is not exactly HH:MM with in-range integer
// parts is a hard error: scheduling features must never guess an instant.
func (s Showtime) At(dateKey string) (time.Time, error) {
	day, err := time.ParseInLocation(DateKeyLayout, dateKey, CatalogZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateKey, err)
	}
	parts := strings.Split(s.Time, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid showtime %q", s.Time)
	}
	hour, herr := strconv.Atoi(parts[0])
	minute, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid showtime %q", s.Time)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, CatalogZone), nil
}

// CanonicalDateKey formats an instant as the catalog's YYYY-MM-DD key in the
// fixed zone.
func CanonicalDateKey(t time.Time) string {
	return t.In(CatalogZone).Format(DateKeyLayout)
}
