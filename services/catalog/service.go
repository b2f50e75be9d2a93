package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cineday/models"
)

// State of the coordinator's catalog.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateFresh   State = "fresh"  // current catalog came from the source
	StateStale   State = "stale"  // current catalog came from the snapshot
	StateFailed  State = "failed" // fetch failed and no snapshot was usable
)

// Status is a point-in-time snapshot of the coordinator, published to
// subscribers on every transition.
type Status struct {
	State      State     `json:"state"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero"` // freshness of the current catalog
	Notice     string    `json:"notice,omitempty"`   // e.g. offline fallback message
	Error      string    `json:"error,omitempty"`
	DayCount   int       `json:"dayCount"`
	MovieCount int       `json:"movieCount"` // deduplicated across days
}

type fetcher interface {
	Fetch(ctx context.Context) (*models.Catalog, error)
}

type snapshotStore interface {
	Persist(*models.Catalog) error
	Load() *models.Catalog
	Clear() error
}

// Service is the synchronization coordinator. It owns the single
// authoritative in-memory catalog: fetch success swaps it wholesale and
// persists the payload best effort; fetch failure adopts the last snapshot
// as stale, or fails outright when no snapshot exists. All query operations
// in query.go read whatever catalog is currently authoritative.
type Service struct {
	fetcher fetcher
	store   snapshotStore

	mu        sync.RWMutex
	state     State
	catalog   *models.Catalog
	updatedAt time.Time
	notice    string
	lastErr   error

	// Overlapping Load calls share one in-flight load instead of racing.
	inflightMu sync.Mutex
	inflight   *inflightLoad

	subMu sync.Mutex
	subs  map[chan Status]struct{}

	stopCh     chan struct{}
	refreshNow chan struct{}
}

type inflightLoad struct {
	done chan struct{}
	err  error
}

// New creates a coordinator over the given fetcher and snapshot store.
func New(f fetcher, s snapshotStore) *Service {
	return &Service{
		fetcher:    f,
		store:      s,
		state:      StateIdle,
		subs:       make(map[chan Status]struct{}),
		stopCh:     make(chan struct{}),
		refreshNow: make(chan struct{}, 1),
	}
}

// Load fetches the catalog and adopts it, falling back to the snapshot when
// the fetch fails. A call arriving while a load is already in flight waits
// for that load and shares its outcome. The returned error is nil whenever a
// usable catalog was adopted, fresh or stale.
func (s *Service) Load(ctx context.Context) error {
	s.inflightMu.Lock()
	if fl := s.inflight; fl != nil {
		s.inflightMu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	fl := &inflightLoad{done: make(chan struct{})}
	s.inflight = fl
	s.inflightMu.Unlock()

	fl.err = s.doLoad(ctx)

	s.inflightMu.Lock()
	s.inflight = nil
	s.inflightMu.Unlock()
	close(fl.done)
	return fl.err
}

func (s *Service) doLoad(ctx context.Context) error {
	s.setLoading()

	cat, err := s.fetcher.Fetch(ctx)
	if err == nil {
		updated, ok := cat.GeneratedTime()
		if !ok {
			updated = time.Now()
		}
		s.adopt(cat, updated, StateFresh, "", nil)
		// Snapshot write is fire-and-forget: a failure never degrades the
		// fresh result.
		if perr := s.store.Persist(cat); perr != nil {
			log.Printf("[catalog] snapshot write failed (ignored): %v", perr)
		}
		log.Printf("[catalog] adopted fresh catalog, %d days", len(cat.Days))
		return nil
	}

	log.Printf("[catalog] fetch failed, trying snapshot: %v", err)
	cached := s.store.Load()
	if cached == nil {
		s.fail(err)
		return err
	}

	// A snapshot whose generated_at does not parse has unknown freshness:
	// UpdatedAt stays zero (omitted from the status JSON). Only the fresh
	// path may substitute now, since there the fetch instant is the truth.
	updated, _ := cached.GeneratedTime()
	notice := fmt.Sprintf("offline, last updated at %s", cached.GeneratedAt)
	s.adopt(cached, updated, StateStale, notice, nil)
	log.Printf("[catalog] adopted snapshot, %d days, generated at %s", len(cached.Days), cached.GeneratedAt)
	return nil
}

// Catalog returns the current authoritative catalog, or nil before the first
// successful load. Callers must treat it as read-only.
func (s *Service) Catalog() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Status returns the current coordinator snapshot.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

// ClearSnapshot deletes the persisted snapshot. Explicit user action; the
// in-memory catalog is untouched.
func (s *Service) ClearSnapshot() error {
	return s.store.Clear()
}

// Subscribe returns a channel that receives a Status snapshot after every
// state transition. A slow subscriber drops intermediate snapshots rather
// than blocking the coordinator.
func (s *Service) Subscribe() chan Status {
	ch := make(chan Status, 8)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (s *Service) Unsubscribe(ch chan Status) {
	s.subMu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

// StartBackgroundRefresh reloads the catalog on an interval until Stop is
// called. Refresh triggers an immediate pass.
func (s *Service) StartBackgroundRefresh(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Load(context.Background()); err != nil {
					log.Printf("[catalog] periodic refresh failed: %v", err)
				}
			case <-s.refreshNow:
				if err := s.Load(context.Background()); err != nil {
					log.Printf("[catalog] manual refresh failed: %v", err)
				}
				// Next auto-refresh a full interval away
				ticker.Reset(interval)
			case <-s.stopCh:
				log.Println("[catalog] background refresh stopped")
				return
			}
		}
	}()
}

// Refresh triggers an immediate background reload. Non-blocking; a no-op
// when a refresh is already pending. The signal is consumed once the
// background loop runs.
func (s *Service) Refresh() {
	select {
	case s.refreshNow <- struct{}{}:
	default:
	}
}

// Stop halts the background refresh loop. Call at most once.
func (s *Service) Stop() {
	close(s.stopCh)
}

func (s *Service) setLoading() {
	s.mu.Lock()
	s.state = StateLoading
	s.notice = ""
	s.lastErr = nil
	st := s.statusLocked()
	s.mu.Unlock()
	s.publish(st)
}

// adopt swaps in a new authoritative catalog and publishes the transition.
func (s *Service) adopt(cat *models.Catalog, updated time.Time, state State, notice string, err error) {
	s.mu.Lock()
	s.catalog = cat
	s.updatedAt = updated
	s.state = state
	s.notice = notice
	s.lastErr = err
	st := s.statusLocked()
	s.mu.Unlock()
	s.publish(st)
}

// fail records a total load failure. Any previously adopted catalog is kept
// so readers keep working with what they had.
func (s *Service) fail(err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.notice = ""
	s.lastErr = err
	st := s.statusLocked()
	s.mu.Unlock()
	s.publish(st)
}

func (s *Service) statusLocked() Status {
	st := Status{
		State:     s.state,
		UpdatedAt: s.updatedAt,
		Notice:    s.notice,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	if s.catalog != nil {
		st.DayCount = len(s.catalog.Days)
		st.MovieCount = len(dedupMovies(s.catalog))
	}
	return st
}

func (s *Service) publish(st Status) {
	s.subMu.Lock()
	for ch := range s.subs {
		select {
		case ch <- st:
		default:
		}
	}
	s.subMu.Unlock()
}
