package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"entertainmenttracker/api"
	"entertainmenttracker/config"
	"entertainmenttracker/handlers"
	"entertainmenttracker/internal/database"
	"entertainmenttracker/services/enrichment"
	"entertainmenttracker/services/watchlist"
	"entertainmenttracker/utils"
)

func main() {
	settings := config.Load()

	if settings.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.DatabasePath()})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	if settings.TMDBAPIKey == "" {
		log.Printf("[main] TMDB_API_KEY not set; movie/tv entries will use stored metadata only")
	}
	gateway := enrichment.NewDefaultGateway(settings.TMDBAPIKey)
	watchlistSvc := watchlist.NewService(db.Watchlist, gateway)

	router := utils.NewRouter()
	watchlistRoutes := router.PathPrefix("/api/users/{userID}/watchlist").Subrouter()
	watchlistRoutes.Use(api.UserMiddleware())
	handlers.NewWatchlistHandler(watchlistSvc).Register(watchlistRoutes)

	server := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
