package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/subwise/outreach-bot/internal/archive"
	"github.com/subwise/outreach-bot/internal/classifier"
	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/drafter"
	"github.com/subwise/outreach-bot/internal/models"
	"github.com/subwise/outreach-bot/internal/notifications"
	"github.com/subwise/outreach-bot/internal/pipeline"
	"github.com/subwise/outreach-bot/internal/scheduler"
	"github.com/subwise/outreach-bot/internal/store"
	"github.com/subwise/outreach-bot/internal/twitter"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting SubWise Outreach Bot")

	// Initialize SQLite store
	sqliteStore, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("Failed to open store: %v", err)
	}
	defer sqliteStore.Close()

	if err := sqliteStore.Migrate(context.Background()); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional blob archive for raw run snapshots
	var runArchive archive.Archive
	if cfg.StorageAccount != "" {
		azureArchive, err := archive.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive: %v", err)
		}
		runArchive = azureArchive
	}

	// Search, classifier, drafter
	searchClient := twitter.NewClient(cfg.TwitterAPIBaseURL, cfg.TwitterAPIKey, cfg.PageDelay, cfg.MaxRetries, cfg.RetryWait)
	if !searchClient.IsEnabled() {
		logrus.Warn("TWITTER_API_KEY not set, discovery will return no results")
	}

	var profileClassifier classifier.Classifier
	if cfg.AnthropicAPIKey != "" {
		profileClassifier = classifier.NewAnthropicClassifier(cfg.AnthropicAPIKey, cfg.ClassifierModel)
	}

	var primaryDrafter drafter.Drafter
	if cfg.DrafterStrategy == config.DrafterLLM {
		primaryDrafter = drafter.NewAnthropicDrafter(cfg.AnthropicAPIKey, cfg.DrafterModel)
	} else {
		primaryDrafter = drafter.NewTemplateDrafter()
	}

	// Initialize notification service
	notificationService := notifications.NewService(cfg)

	// Initialize pipeline service
	pipelineService := pipeline.NewService(cfg, sqliteStore, searchClient, profileClassifier, primaryDrafter, notificationService, runArchive)

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, pipelineService)
	if cfg.ScheduleEnabled {
		if err := schedulerService.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer schedulerService.Stop()
	} else {
		logrus.Info("Scheduler disabled, runs must be triggered manually")
	}

	// Set up HTTP server for health checks, triggers, and queue review
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(pipelineService)).Methods("GET")

	router.HandleFunc("/trigger", triggerHandler(pipelineService, "")).Methods("POST")
	router.HandleFunc("/trigger/collab", triggerHandler(pipelineService, models.BucketCollab)).Methods("POST")
	router.HandleFunc("/trigger/user", triggerHandler(pipelineService, models.BucketUser)).Methods("POST")

	router.HandleFunc("/candidates", candidatesHandler(sqliteStore)).Methods("GET")
	router.HandleFunc("/candidates/history", candidateHistoryHandler(sqliteStore)).Methods("GET")
	router.HandleFunc("/candidates/{id}/sent", markStatusHandler(sqliteStore, models.StatusSent)).Methods("POST")
	router.HandleFunc("/candidates/{id}/skip", markStatusHandler(sqliteStore, models.StatusSkipped)).Methods("POST")
	router.HandleFunc("/candidates/{id}", deleteCandidateHandler(sqliteStore)).Methods("DELETE")

	router.HandleFunc("/snapshots", listSnapshotsHandler(runArchive)).Methods("GET")
	router.HandleFunc("/snapshots/{date}/{bucket}", getSnapshotHandler(runArchive)).Methods("GET")
	router.HandleFunc("/snapshots/{date}/{bucket}", deleteSnapshotHandler(runArchive)).Methods("DELETE")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(pipelineService *pipeline.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(pipelineService.GetMetrics()))
	}
}

func triggerHandler(pipelineService *pipeline.Service, bucket models.Bucket) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			var err error
			switch bucket {
			case models.BucketCollab:
				_, err = pipelineService.RunCollab(context.Background())
			case models.BucketUser:
				_, err = pipelineService.RunUser(context.Background())
			default:
				err = pipelineService.RunBoth(context.Background())
			}
			if err != nil {
				logrus.Errorf("Manual pipeline trigger failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Pipeline run triggered successfully"}`))
	}
}

func candidatesHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}
		bucket := models.Bucket(r.URL.Query().Get("bucket"))

		candidates, err := s.CandidatesForDate(r.Context(), date, bucket)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"date":       date,
			"count":      len(candidates),
			"candidates": candidates,
		})
	}
}

func candidateHistoryHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		end := r.URL.Query().Get("end")
		if end == "" {
			end = time.Now().UTC().Format("2006-01-02")
		}
		start := r.URL.Query().Get("start")
		if start == "" {
			start = time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
		}
		status := r.URL.Query().Get("status")
		if status == "" {
			status = models.StatusSent
		}

		candidates, err := s.CandidatesByStatusRange(r.Context(), start, end, status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"start":      start,
			"end":        end,
			"status":     status,
			"count":      len(candidates),
			"candidates": candidates,
		})
	}
}

func listSnapshotsHandler(a archive.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("archive is not configured"))
			return
		}

		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "runs/"
		}

		names, err := a.List(prefix)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"prefix":    prefix,
			"count":     len(names),
			"snapshots": names,
		})
	}
}

func getSnapshotHandler(a archive.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("archive is not configured"))
			return
		}

		vars := mux.Vars(r)
		name := pipeline.SnapshotName(vars["date"], models.Bucket(vars["bucket"]))

		data, err := a.Retrieve(name)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func deleteSnapshotHandler(a archive.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("archive is not configured"))
			return
		}

		vars := mux.Vars(r)
		name := pipeline.SnapshotName(vars["date"], models.Bucket(vars["bucket"]))
		if err := a.Delete(name); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func markStatusHandler(s store.Store, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := s.MarkStatus(r.Context(), id, status); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": id, "status": status})
	}
}

func deleteCandidateHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := s.DeleteCandidate(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
