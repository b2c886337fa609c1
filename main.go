package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinehub/api"
	"cinehub/config"
	"cinehub/handlers"
	"cinehub/internal/database"
	"cinehub/services/accounts"
	"cinehub/services/catalogs"
	"cinehub/services/content"
	"cinehub/services/habits"
	"cinehub/services/profiles"
	"cinehub/services/ratings"
	"cinehub/services/stats"
	"cinehub/services/watchprog"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("cinehub backend starting...")

	configPath := os.Getenv("CINEHUB_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	accountsSvc, err := accounts.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init accounts service: %v", err)
	}
	profilesSvc, err := profiles.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init profiles service: %v", err)
	}
	catalogsSvc, err := catalogs.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init catalogs service: %v", err)
	}

	contentSvc := content.NewService(db.Conn())
	habitsSvc := habits.NewService(db.Conn())
	watchSvc := watchprog.NewService(profilesSvc, contentSvc)
	statsSvc := stats.NewService(profilesSvc, contentSvc, habitsSvc)
	ratingsClient := ratings.NewClient(settings.Ratings.APIKey, settings.Ratings.CacheTTLHours)

	contentHandler := handlers.NewContentHandler(contentSvc, ratingsClient)
	watchHandler := handlers.NewWatchProgressHandler(watchSvc)
	userHandler := handlers.NewUserHandler(accountsSvc, profilesSvc, statsSvc, habitsSvc, catalogsSvc)
	habitHandler := handlers.NewHabitHandler(habitsSvc)
	catalogHandler := handlers.NewCatalogHandler(catalogsSvc)

	r := mux.NewRouter()
	api.Register(r, contentHandler, watchHandler, userHandler, habitHandler, catalogHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
