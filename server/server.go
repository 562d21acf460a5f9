package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"songshelf/config"
	"songshelf/core/upload"
	"songshelf/db"
	"songshelf/logger"
	"songshelf/repository"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	database, err := db.ConnectDB(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer database.Close()
	logger.Info("connected to database", logger.String("host", cfg.DBHost), logger.String("name", cfg.DBName))

	if err := db.InitDB(database); err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}

	ensureDirExists(cfg.PublicDir)
	ensureDirExists(cfg.UploadDir)

	renderer, err := NewRenderer(cfg.TemplateDir)
	if err != nil {
		logger.Fatal("failed to load templates", logger.ErrorField(err))
	}

	songRepo := repository.NewMySQLSongRepository(database)
	coordinator := upload.NewCoordinator(songRepo, cfg.UploadDir)
	songHandler := NewSongHandler(songRepo, coordinator, renderer)
	apiHandler := NewAPIHandler(songRepo)

	router := mux.NewRouter()

	// JSON API with permissive CORS, same as the HTML pages never need.
	api := router.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)
	api.HandleFunc("/songs", apiHandler.GetSongsHandler).Methods(http.MethodGet, http.MethodOptions)

	// HTML pages. /songs/new must be registered before /songs/{id} so "new"
	// is not captured as an id.
	router.HandleFunc("/", songHandler.IndexHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/songs", songHandler.IndexHandler).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/songs", songHandler.CreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/songs/new", songHandler.NewHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}", songHandler.ShowHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}", songHandler.UpdateHandler).Methods(http.MethodPost, http.MethodPut)
	router.HandleFunc("/songs/{id}/edit", songHandler.EditHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}/delete", songHandler.DeleteHandler).Methods(http.MethodPost, http.MethodDelete)

	// Static file serving for uploaded audio and page assets.
	uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))
	publicFileServer := http.FileServer(http.Dir(cfg.PublicDir))
	router.PathPrefix("/public/").Handler(http.StripPrefix("/public/", publicFileServer))

	router.NotFoundHandler = http.HandlerFunc(songHandler.NotFoundHandler)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Minute, // uploads can be slow
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// corsMiddleware allows the JSON API to be consumed cross-origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("creating directory", logger.String("path", path))
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Fatal("failed to create directory", logger.String("path", path), logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("failed to check directory", logger.String("path", path), logger.ErrorField(err))
	}
}
