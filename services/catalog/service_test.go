package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cineday/models"
	"cineday/services/catalog"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	cat   *models.Catalog
	err   error
	delay time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context) (*models.Catalog, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.cat, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu         sync.Mutex
	cat        *models.Catalog
	persistErr error
	persists   int
}

func (s *fakeStore) Persist(cat *models.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persists++
	if s.persistErr != nil {
		return s.persistErr
	}
	s.cat = cat
	return nil
}

func (s *fakeStore) Load() *models.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat
}

func (s *fakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = nil
	return nil
}

func TestLoadAdoptsFreshCatalog(t *testing.T) {
	store := &fakeStore{}
	svc := catalog.New(&fakeFetcher{cat: testCatalog()}, store)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	st := svc.Status()
	if st.State != catalog.StateFresh {
		t.Fatalf("expected fresh state, got %s", st.State)
	}
	want := time.Date(2025, 11, 14, 6, 0, 0, 0, time.UTC)
	if !st.UpdatedAt.Equal(want) {
		t.Errorf("expected freshness %v, got %v", want, st.UpdatedAt)
	}
	if st.Notice != "" || st.Error != "" {
		t.Errorf("fresh state must carry no notice or error: %+v", st)
	}
	if st.DayCount != 1 || st.MovieCount != 1 {
		t.Errorf("unexpected counts: %+v", st)
	}

	store.mu.Lock()
	persists := store.persists
	store.mu.Unlock()
	if persists != 1 {
		t.Errorf("expected one snapshot write, got %d", persists)
	}
}

func TestLoadFreshnessFallsBackToNow(t *testing.T) {
	cat := testCatalog()
	cat.GeneratedAt = "pas une date"
	svc := catalog.New(&fakeFetcher{cat: cat}, &fakeStore{})

	before := time.Now()
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	st := svc.Status()
	if st.UpdatedAt.Before(before) {
		t.Errorf("expected freshness to default to now, got %v", st.UpdatedAt)
	}
}

func TestLoadSurvivesPersistFailure(t *testing.T) {
	store := &fakeStore{persistErr: errors.New("disk full")}
	svc := catalog.New(&fakeFetcher{cat: testCatalog()}, store)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("persist failure must not fail the load: %v", err)
	}
	if st := svc.Status(); st.State != catalog.StateFresh {
		t.Errorf("expected fresh state despite persist failure, got %s", st.State)
	}
}

func TestLoadFallsBackToSnapshot(t *testing.T) {
	cached := testCatalog()
	cached.GeneratedAt = "2025-01-01T00:00:00Z"
	store := &fakeStore{cat: cached}
	svc := catalog.New(&fakeFetcher{err: catalog.ErrTransport}, store)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("fallback load must succeed: %v", err)
	}

	st := svc.Status()
	if st.State != catalog.StateStale {
		t.Fatalf("expected stale state, got %s", st.State)
	}
	if !strings.Contains(st.Notice, "2025-01-01T00:00:00Z") {
		t.Errorf("notice must carry the snapshot timestamp, got %q", st.Notice)
	}
	if svc.Catalog() == nil {
		t.Error("expected snapshot adopted as authoritative")
	}
}

func TestLoadStaleKeepsUnknownFreshness(t *testing.T) {
	cached := testCatalog()
	cached.GeneratedAt = "hier soir"
	store := &fakeStore{cat: cached}
	svc := catalog.New(&fakeFetcher{err: catalog.ErrTransport}, store)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("fallback load must succeed: %v", err)
	}

	st := svc.Status()
	if st.State != catalog.StateStale {
		t.Fatalf("expected stale state, got %s", st.State)
	}
	if !st.UpdatedAt.IsZero() {
		t.Errorf("an unreadable snapshot timestamp must leave freshness unknown, got %v", st.UpdatedAt)
	}
	if !strings.Contains(st.Notice, "hier soir") {
		t.Errorf("notice must carry the raw snapshot timestamp, got %q", st.Notice)
	}
}

func TestLoadFailsWithoutSnapshot(t *testing.T) {
	svc := catalog.New(&fakeFetcher{err: catalog.ErrTransport}, &fakeStore{})

	err := svc.Load(context.Background())
	if !errors.Is(err, catalog.ErrTransport) {
		t.Fatalf("expected the original fetch error, got %v", err)
	}

	st := svc.Status()
	if st.State != catalog.StateFailed {
		t.Fatalf("expected failed state, got %s", st.State)
	}
	if !strings.Contains(st.Error, "transport error") {
		t.Errorf("expected transport error message, got %q", st.Error)
	}
}

func TestRefreshReplacesCatalogWholesale(t *testing.T) {
	first := testCatalog()
	fetcher := &fakeFetcher{cat: first}
	svc := catalog.New(fetcher, &fakeStore{})

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	second := &models.Catalog{
		GeneratedAt: "2025-11-15T06:00:00Z",
		Days: []models.ScheduleDay{
			{Date: "2025-11-15", Movies: []models.Movie{{Title: "Alien", ReleaseYear: "1979"}}},
		},
	}
	fetcher.mu.Lock()
	fetcher.cat = second
	fetcher.mu.Unlock()

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("second load returned error: %v", err)
	}

	movies := svc.Movies()
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Fatalf("expected the catalog replaced wholesale, got %+v", movies)
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{cat: testCatalog(), delay: 100 * time.Millisecond}
	svc := catalog.New(fetcher, &fakeStore{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Load(context.Background()); err != nil {
				t.Errorf("load returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fetcher.callCount(); got != 1 {
		t.Errorf("expected overlapping loads to share one fetch, got %d", got)
	}
}

func TestRefreshTriggersImmediateReload(t *testing.T) {
	fetcher := &fakeFetcher{cat: testCatalog()}
	svc := catalog.New(fetcher, &fakeStore{})

	svc.StartBackgroundRefresh(time.Hour)
	defer svc.Stop()

	svc.Refresh()

	deadline := time.Now().Add(2 * time.Second)
	for svc.Status().State != catalog.StateFresh && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if st := svc.Status(); st.State != catalog.StateFresh {
		t.Fatalf("expected fresh state after refresh, got %s", st.State)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("expected one fetch from the refresh signal, got %d", got)
	}
}

func TestRefreshBeforeLoopStartsIsPending(t *testing.T) {
	fetcher := &fakeFetcher{cat: testCatalog()}
	svc := catalog.New(fetcher, &fakeStore{})

	// Signal first; the loop must pick it up once started.
	svc.Refresh()
	svc.Refresh() // coalesces with the pending signal

	svc.StartBackgroundRefresh(time.Hour)
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected the pending signal to coalesce into one fetch, got %d", got)
	}
}

func TestSubscribeSeesTransitions(t *testing.T) {
	svc := catalog.New(&fakeFetcher{cat: testCatalog()}, &fakeStore{})
	ch := svc.Subscribe()
	defer svc.Unsubscribe(ch)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	var states []catalog.State
	for len(states) < 2 {
		select {
		case st := <-ch:
			states = append(states, st.State)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for transitions, saw %v", states)
		}
	}

	if states[0] != catalog.StateLoading || states[1] != catalog.StateFresh {
		t.Errorf("expected loading then fresh, got %v", states)
	}
}
