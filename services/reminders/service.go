package reminders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cineday/internal/database"
	"cineday/models"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"
)

var (
	// ErrInvalidDate means the showtime could not be resolved to an instant.
	ErrInvalidDate = errors.New("reminders: invalid date or time")
	// ErrPastDate means the alert instant has already elapsed.
	ErrPastDate = errors.New("reminders: reminder time already passed")
	// ErrNotAuthorized means the notification channel refused delivery.
	ErrNotAuthorized = errors.New("reminders: notifications not authorized")
)

const maxConcurrentDeliveries = 4

// Notifier delivers a reminder alert. Implementations wrap a platform
// notification channel and may refuse with ErrNotAuthorized.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// Service schedules showtime reminders and dispatches the ones that come
// due. Scheduling errors are surfaced per action and never affect other
// reminders.
type Service struct {
	repo     *database.ReminderRepository
	notifier Notifier
	lead     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates the reminder service. lead is how long before the
// showtime the alert fires.
func NewService(repo *database.ReminderRepository, notifier Notifier, lead time.Duration) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		lead:     lead,
		now:      time.Now,
	}
}

// Schedule creates a reminder for one screening of a movie at a cinema on
// the given date key. The alert instant is the showtime minus the service's
// lead; an alert instant in the past is refused.
func (s *Service) Schedule(movie models.Movie, cinema string, st models.Showtime, dateKey string) (models.Reminder, error) {
	at, err := st.At(dateKey)
	if err != nil {
		return models.Reminder{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	remindAt := at.Add(-s.lead)
	if !remindAt.After(s.now()) {
		return models.Reminder{}, ErrPastDate
	}

	rem := models.Reminder{
		MovieKey:   movie.Key(),
		Title:      movie.Title,
		Cinema:     cinema,
		ShowtimeAt: at,
		RemindAt:   &remindAt,
	}
	if err := s.repo.Create(&rem); err != nil {
		return models.Reminder{}, fmt.Errorf("store reminder: %w", err)
	}
	log.Printf("[reminders] scheduled %q at %s (%s), alert %s", rem.Title, rem.Cinema, at.Format(time.RFC3339), remindAt.Format(time.RFC3339))
	return rem, nil
}

// Cancel removes a reminder by its opaque identifier.
func (s *Service) Cancel(id string) (bool, error) {
	return s.repo.Delete(id)
}

// Upcoming lists reminders whose showtime has not passed.
func (s *Service) Upcoming() ([]models.Reminder, error) {
	return s.repo.ListUpcoming(s.now())
}

// Start begins the dispatch loop that delivers due reminders.
func (s *Service) Start(ctx context.Context, checkInterval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if checkInterval < time.Second {
		checkInterval = time.Minute
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.dispatchLoop(checkInterval)

	log.Println("[reminders] dispatch loop started")
	return nil
}

// Stop halts the dispatch loop, waiting for in-flight deliveries up to the
// context deadline.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[reminders] dispatch loop stopped")
	case <-ctx.Done():
		log.Println("[reminders] dispatch loop stopped (timeout)")
	}

	s.running = false
	return nil
}

func (s *Service) dispatchLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately so restarts don't miss alerts that came due
	// while the service was down.
	s.dispatchDue()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue()
		}
	}
}

// dispatchDue delivers every due reminder, concurrently with a bounded pool.
// Delivery is retried a few times; ErrNotAuthorized is terminal since
// retrying an unauthorized channel cannot succeed.
func (s *Service) dispatchDue() {
	due, err := s.repo.ListDue(s.now())
	if err != nil {
		log.Printf("[reminders] due query failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	p := pool.New().WithMaxGoroutines(maxConcurrentDeliveries)
	for _, rem := range due {
		rem := rem
		p.Go(func() {
			err := retry.Do(
				func() error { return s.notifier.Notify(s.ctx, rem) },
				retry.Attempts(3),
				retry.Delay(500*time.Millisecond),
				retry.Context(s.ctx),
				retry.LastErrorOnly(true),
				retry.RetryIf(func(err error) bool {
					return !errors.Is(err, ErrNotAuthorized)
				}),
			)
			if err != nil {
				log.Printf("[reminders] delivery failed id=%s title=%q: %v", rem.ID, rem.Title, err)
				return
			}
			if err := s.repo.MarkDelivered(rem.ID, s.now()); err != nil {
				log.Printf("[reminders] mark delivered failed id=%s: %v", rem.ID, err)
			}
		})
	}
	p.Wait()
}

// LogNotifier is the default Notifier: it writes the alert to the service
// log. The real app binds a platform notification channel here.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, r models.Reminder) error {
	log.Printf("[reminders] ALERT %q at %s, showtime %s", r.Title, r.Cinema, r.ShowtimeAt.Format(time.RFC3339))
	return nil
}
