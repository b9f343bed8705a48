package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sadopc/clearway/internal/checkin"
	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
	"github.com/sadopc/clearway/internal/metrics"
)

type Config struct {
	Addr        string
	RateLimit   float64
	RateBurst   int
	ChartWindow int
}

// Server exposes the journal over a small local JSON API.
type Server struct {
	cfg     Config
	repo    journal.Repository
	goals   *goal.Store
	flow    *checkin.Flow
	flowMu  sync.Mutex
	limiter *limiter
}

func New(cfg Config, repo journal.Repository, goals *goal.Store, flow *checkin.Flow) *Server {
	if cfg.ChartWindow < 1 {
		cfg.ChartWindow = 7
	}
	return &Server{
		cfg:     cfg,
		repo:    repo,
		goals:   goals,
		flow:    flow,
		limiter: newLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.limiter.middleware)
	r.Use(monitorMiddleware)

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/journal", s.listJournal).Methods("GET")
	api.HandleFunc("/journal", s.upsertJournal).Methods("POST")
	api.HandleFunc("/checkin", s.checkIn).Methods("POST")
	api.HandleFunc("/series", s.series).Methods("GET")
	api.HandleFunc("/goal", s.getGoal).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(handlers.LoggingHandler(logger.Writer(), cors(r)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.limiter.run(ctx)

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server shutdown complete")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "clearway"})
}

func (s *Server) listJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.LoadAll(r.Context())
	if err != nil {
		logger.Error("Failed to load journal", "id", RequestID(r.Context()), "err", err)
		respondWithError(w, http.StatusServiceUnavailable, "Journal unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) upsertJournal(w http.ResponseWriter, r *http.Request) {
	var e journal.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := journal.ParseDate(e.Date); !ok {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	e.ID = ""
	if err := s.repo.Upsert(r.Context(), e); err != nil {
		logger.Error("Failed to save entry", "id", RequestID(r.Context()), "date", e.Date, "err", err)
		respondWithError(w, http.StatusServiceUnavailable, "Journal unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

type checkInRequest struct {
	Drank   bool   `json:"drank"`
	Amount  string `json:"amount"`
	Feeling string `json:"feeling"`
}

type checkInResponse struct {
	Date      string `json:"date"`
	Stage     string `json:"stage"`
	DaysClear int    `json:"daysClear"`
}

func (s *Server) checkIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	mood, ok := journal.ParseMood(req.Feeling)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown feeling")
		return
	}

	s.flowMu.Lock()
	sess, err := s.flow.Run(r.Context(), req.Drank, req.Amount, mood)
	s.flowMu.Unlock()

	resp := checkInResponse{Date: sess.Date, Stage: sess.Stage.String(), DaysClear: sess.DaysClear}
	switch {
	case errors.Is(err, checkin.ErrInactive):
		respondWithError(w, http.StatusConflict, "Already checked in today")
	case errors.Is(err, checkin.ErrEmptyAmount):
		respondWithError(w, http.StatusBadRequest, "amount is required")
	case errors.Is(err, checkin.ErrPersist):
		respondWithError(w, http.StatusServiceUnavailable, "Check-in not saved")
	case err != nil:
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithJSON(w, http.StatusCreated, resp)
	}
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) {
	window := s.cfg.ChartWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "window must be an integer")
			return
		}
		window = n
	}
	entries, err := s.repo.LoadAll(r.Context())
	if err != nil {
		logger.Error("Failed to load journal", "id", RequestID(r.Context()), "err", err)
		respondWithError(w, http.StatusServiceUnavailable, "Journal unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, journal.DeriveSeries(entries, window))
}

type goalResponse struct {
	GoalDays  int     `json:"goalDays"`
	DaysClear int     `json:"daysClear"`
	Progress  float64 `json:"progress"`
	Met       bool    `json:"met"`
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.Load(r.Context())
	if err != nil {
		logger.Error("Failed to load goal", "id", RequestID(r.Context()), "err", err)
		respondWithError(w, http.StatusServiceUnavailable, "Goal unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, goalResponse{
		GoalDays:  g.GoalDays,
		DaysClear: g.DaysClear,
		Progress:  g.Progress(),
		Met:       g.Met(),
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
