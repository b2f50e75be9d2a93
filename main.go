package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cineday/config"
	"cineday/handlers"
	"cineday/internal/database"
	"cineday/services/catalog"
	"cineday/services/favorites"
	"cineday/services/reminders"
	"cineday/utils"

	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("[main] create data dir: %v", err)
	}

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(cfg.DataDir, "cineday.db"),
	})
	if err != nil {
		log.Fatalf("[main] open database: %v", err)
	}
	defer db.Close()

	// Services
	catalogSvc := catalog.New(
		catalog.NewFetcher(cfg.SourceURL),
		catalog.NewStore(filepath.Join(cfg.DataDir, "catalog.json")),
	)
	favoritesSvc := favorites.NewService(database.NewFavoriteRepository(db.Connection()))
	remindersSvc := reminders.NewService(
		database.NewReminderRepository(db.Connection()),
		reminders.LogNotifier{},
		cfg.ReminderLead,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial load; a failure here is already degraded state, not fatal.
	if err := catalogSvc.Load(ctx); err != nil {
		log.Printf("[main] initial catalog load failed: %v", err)
	}
	catalogSvc.StartBackgroundRefresh(cfg.RefreshInterval)
	defer catalogSvc.Stop()

	if err := remindersSvc.Start(ctx, cfg.ReminderCheckInterval); err != nil {
		log.Fatalf("[main] start reminder dispatch: %v", err)
	}

	// Routes
	router := utils.NewRouter()
	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesSvc)
	remindersHandler := handlers.NewRemindersHandler(remindersSvc)

	router.HandleFunc("/api/catalog/status", catalogHandler.Status).Methods(http.MethodGet)
	router.HandleFunc("/api/catalog/refresh", catalogHandler.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/api/catalog/cache", catalogHandler.ClearCache).Methods(http.MethodDelete)

	router.HandleFunc("/api/movies", catalogHandler.Movies).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/search", catalogHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/filter", catalogHandler.FilterMovies).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/{key}", catalogHandler.Movie).Methods(http.MethodGet)

	router.HandleFunc("/api/dates", catalogHandler.Dates).Methods(http.MethodGet)
	router.HandleFunc("/api/dates/{date}/movies", catalogHandler.MoviesForDate).Methods(http.MethodGet)

	router.HandleFunc("/api/favorites/movies", favoritesHandler.ListMovies).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites/movies", favoritesHandler.AddMovie).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites/movies/{key}", favoritesHandler.RemoveMovie).Methods(http.MethodDelete)
	router.HandleFunc("/api/favorites/cinemas", favoritesHandler.ListCinemas).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites/cinemas", favoritesHandler.AddCinema).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites/cinemas/{name}", favoritesHandler.RemoveCinema).Methods(http.MethodDelete)

	router.HandleFunc("/api/reminders", remindersHandler.Upcoming).Methods(http.MethodGet)
	router.HandleFunc("/api/reminders", remindersHandler.Schedule).Methods(http.MethodPost)
	router.HandleFunc("/api/reminders/{id}", remindersHandler.Cancel).Methods(http.MethodDelete)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown: %v", err)
	}
	if err := remindersSvc.Stop(shutdownCtx); err != nil {
		log.Printf("[main] reminder dispatch shutdown: %v", err)
	}
}
