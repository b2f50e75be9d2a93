package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cineday/models"
	"cineday/services/reminders"

	"github.com/gorilla/mux"
)

type remindersService interface {
	Schedule(movie models.Movie, cinema string, st models.Showtime, dateKey string) (models.Reminder, error)
	Cancel(id string) (bool, error)
	Upcoming() ([]models.Reminder, error)
}

var _ remindersService = (*reminders.Service)(nil)

// RemindersHandler exposes showtime reminder scheduling.
type RemindersHandler struct {
	Service remindersService
}

func NewRemindersHandler(service remindersService) *RemindersHandler {
	return &RemindersHandler{Service: service}
}

// scheduleRequest carries everything needed to pin a reminder to one
// screening.
type scheduleRequest struct {
	Title       string `json:"title"`
	ReleaseYear string `json:"releaseYear"`
	Cinema      string `json:"cinema"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Lang        string `json:"lang,omitempty"`
	Format      string `json:"format,omitempty"`
}

func (h *RemindersHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var body scheduleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Title == "" || body.Cinema == "" {
		http.Error(w, "title and cinema are required", http.StatusBadRequest)
		return
	}

	movie := models.Movie{Title: body.Title, ReleaseYear: body.ReleaseYear}
	st := models.Showtime{Time: body.Time, Lang: body.Lang, Format: body.Format}

	rem, err := h.Service.Schedule(movie, body.Cinema, st, body.Date)
	if err != nil {
		// Scheduling errors go back verbatim; they are the user-facing text.
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, reminders.ErrInvalidDate):
			status = http.StatusBadRequest
		case errors.Is(err, reminders.ErrPastDate):
			status = http.StatusConflict
		case errors.Is(err, reminders.ErrNotAuthorized):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rem)
}

func (h *RemindersHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	rems, err := h.Service.Upcoming()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rems == nil {
		rems = []models.Reminder{}
	}
	writeJSON(w, rems)
}

func (h *RemindersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.Cancel(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
