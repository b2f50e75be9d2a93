package models

import "time"

// FavoriteMovie is a favorited film, keyed by the movie identity string.
type FavoriteMovie struct {
	MovieKey  string    `json:"movieKey"`
	Title     string    `json:"title"`
	PosterURL string    `json:"posterUrl,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// FavoriteCinema is a favorited cinema, keyed by name.
type FavoriteCinema struct {
	Name    string    `json:"name"`
	AddedAt time.Time `json:"addedAt"`
}

// Reminder is a scheduled alert for one screening.
type Reminder struct {
	ID          string     `json:"id"`
	MovieKey    string     `json:"movieKey"`
	Title       string     `json:"title"`
	Cinema      string     `json:"cinema"`
	ShowtimeAt  time.Time  `json:"showtimeAt"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}
