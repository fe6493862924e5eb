package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rgehrsitz/fireplan/internal/calculation"
	"github.com/rgehrsitz/fireplan/internal/config"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/logging"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Server exposes the engine over JSON HTTP
type Server struct {
	settings  config.Settings
	logger    *zap.Logger
	parser    *config.InputParser
	engineLog calculation.Logger
}

// NewServer creates a server. A nil logger discards output.
func NewServer(settings config.Settings, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		settings:  settings,
		logger:    logger,
		parser:    config.NewInputParser(),
		engineLog: logging.NewAdapter(logger, "engine"),
	}
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/simulations", s.handleSimulation)
		r.Post("/monte-carlo", s.handleMonteCarlo)
		r.Post("/monte-carlo/trials/{seed}", s.handleTrial)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorResponse struct {
	Error  string                   `json:"error"`
	Fields []domain.ValidationError `json:"fields,omitempty"`
}

type simulationResponse struct {
	KeyMetrics domain.KeyMetrics        `json:"key_metrics"`
	Simulation *domain.SimulationResult `json:"simulation"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine and validation errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields domain.ValidationErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid plan", Fields: fields})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request cancelled", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})
	default:
		s.logger.Error("simulation failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// decodePlan reads a JSON plan, applies query overrides and defaults, and validates it
func (s *Server) decodePlan(w http.ResponseWriter, r *http.Request) (*domain.PlanInputs, error) {
	var plan domain.PlanInputs
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %v: %w", err, domain.ErrInvalidInput)
	}

	q := r.URL.Query()
	if mode := q.Get("mode"); mode != "" {
		plan.Simulation.Mode = domain.SimulationMode(mode)
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed %q is not an integer: %w", raw, domain.ErrInvalidInput)
		}
		plan.Simulation.Seed = seed
	}
	if raw := q.Get("trials"); raw != "" {
		trials, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("trials %q is not an integer: %w", raw, domain.ErrInvalidInput)
		}
		plan.Simulation.Trials = trials
	}

	s.parser.ApplyDefaults(&plan)
	if err := config.ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	plan, err := s.decodePlan(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	engine := calculation.NewSimulationEngine()
	engine.SetLogger(s.engineLog)
	result, err := engine.RunPlan(r.Context(), plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, simulationResponse{
		KeyMetrics: calculation.ExtractKeyMetrics(result, result.Context.StartAge),
		Simulation: result,
	})
}

func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	plan, err := s.decodePlan(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit := s.settings.Simulation.MaxTrials; limit > 0 && plan.Simulation.Trials > limit {
		s.writeError(w, r, fmt.Errorf("trials %d exceeds the limit of %d: %w", plan.Simulation.Trials, limit, domain.ErrInvalidInput))
		return
	}

	orchestrator := calculation.NewMonteCarloOrchestrator()
	orchestrator.SetLogger(s.engineLog)
	result, err := orchestrator.Run(r.Context(), plan, calculation.MonteCarloOptions{
		BaseSeed: plan.Simulation.Seed,
		Workers:  s.settings.Simulation.Workers,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrial(w http.ResponseWriter, r *http.Request) {
	seed, err := strconv.ParseInt(chi.URLParam(r, "seed"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("seed %q is not an integer: %w", chi.URLParam(r, "seed"), domain.ErrInvalidInput))
		return
	}
	plan, err := s.decodePlan(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	orchestrator := calculation.NewMonteCarloOrchestrator()
	orchestrator.SetLogger(s.engineLog)
	result, err := orchestrator.RunTrial(r.Context(), plan, seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, simulationResponse{
		KeyMetrics: calculation.ExtractKeyMetrics(result, result.Context.StartAge),
		Simulation: result,
	})
}
