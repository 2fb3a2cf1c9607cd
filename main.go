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
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"filmhub/api"
	"filmhub/config"
	"filmhub/handlers"
	"filmhub/internal/store"
	"filmhub/internal/tasks"
	"filmhub/services/admin"
	"filmhub/services/auth"
	"filmhub/services/blob"
	"filmhub/services/catalog"
	"filmhub/services/identity"
	"filmhub/services/lists"
	"filmhub/services/movies"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("FilmHub backend starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("FILMHUB_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
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

	// Document store
	if dir := filepath.Dir(settings.Database.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create database directory: %v", err)
		}
	}
	docStore, err := store.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer docStore.Close()

	// Background task runner
	runner := tasks.NewRunner(settings.Tasks.QueueSize)
	defer runner.Close()

	// Services
	if err := os.MkdirAll(settings.Storage.Directory, 0755); err != nil {
		log.Fatalf("failed to create storage directory: %v", err)
	}
	photoFs := afero.NewBasePathFs(afero.NewOsFs(), settings.Storage.Directory)

	catalogClient := catalog.NewClient(settings.Catalog.APIKey, settings.Catalog.Language, settings.Catalog.BaseURL, nil)
	identitySvc := identity.NewService(docStore)
	blobSvc, err := blob.NewService(photoFs, settings.Storage.BaseURL)
	if err != nil {
		log.Fatalf("failed to init blob storage: %v", err)
	}
	authSvc := auth.NewService(identitySvc, blobSvc, docStore)
	moviesSvc := movies.NewService(catalogClient, docStore, runner)
	listsSvc := lists.NewService(docStore, catalogClient)
	adminSvc := admin.NewService(docStore, moviesSvc, runner)

	// Router and handlers
	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewAuthHandler(authSvc),
		handlers.NewMoviesHandler(moviesSvc),
		handlers.NewListsHandler(listsSvc),
		handlers.NewAdminHandler(adminSvc),
		handlers.NewStreamHandler(listsSvc, moviesSvc),
		settings.Storage.Directory,
		settings.Storage.BaseURL,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout for SSE streams
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
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
