package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the room API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env.Pipeline, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var validate = validator.New()

type suggestBody struct {
	Destination string               `json:"destination" validate:"required"`
	Answers     []model.AnswerRecord `json:"answers"`
	Limit       int                  `json:"limit" validate:"gte=0,lte=50"`
}

type voteBody struct {
	UserID      string `json:"user_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
	VoteType    string `json:"vote_type" validate:"required,oneof=up down neutral"`
}

type selectionBody struct {
	UserID       string               `json:"user_id" validate:"required"`
	CandidateIDs []string             `json:"candidate_ids" validate:"dive,required"`
	Answers      []model.AnswerRecord `json:"answers"`
}

// roomAPI serves room operations over HTTP.
type roomAPI struct {
	p *pipeline.Pipeline
}

// buildRouter wires the room routes. A nil pipeline serves only /health.
func buildRouter(p *pipeline.Pipeline, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if p == nil {
		return r
	}
	api := &roomAPI{p: p}
	r.Route("/rooms/{room}/categories/{category}", func(r chi.Router) {
		r.Post("/suggestions", api.suggest)
		r.Post("/votes", api.vote)
		r.Get("/consensus", api.consensus)
		r.Post("/selections", api.finalize)
		r.Post("/consolidate", api.consolidate)
		r.Get("/plan", api.plan)
	})
	return r
}

func (a *roomAPI) suggest(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	var body suggestBody
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := a.p.Suggest(r.Context(), pipeline.SuggestRequest{
		RoomID:      chi.URLParam(r, "room"),
		Category:    cat,
		Destination: body.Destination,
		Answers:     body.Answers,
		Limit:       body.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *roomAPI) vote(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	var body voteBody
	if !decodeBody(w, r, &body) {
		return
	}
	vote := model.Vote{
		CandidateID: body.CandidateID,
		UserID:      body.UserID,
		Type:        model.VoteType(body.VoteType),
	}
	if err := a.p.CastVote(r.Context(), chi.URLParam(r, "room"), cat, vote); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (a *roomAPI) consensus(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	groupSize := 0
	if raw := r.URL.Query().Get("group_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "group_size must be a non-negative integer"})
			return
		}
		groupSize = n
	}
	view, err := a.p.Consensus(r.Context(), chi.URLParam(r, "room"), cat, groupSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *roomAPI) finalize(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	var body selectionBody
	if !decodeBody(w, r, &body) {
		return
	}
	sel, err := a.p.FinalizeSelection(r.Context(), pipeline.FinalizeRequest{
		RoomID:       chi.URLParam(r, "room"),
		UserID:       body.UserID,
		Category:     cat,
		CandidateIDs: body.CandidateIDs,
		Answers:      body.Answers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (a *roomAPI) consolidate(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	out, err := a.p.Consolidate(r.Context(), chi.URLParam(r, "room"), cat)
	if err != nil {
		writeError(w, err)
		return
	}
	if out.Waiting {
		writeJSON(w, http.StatusAccepted, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *roomAPI) plan(w http.ResponseWriter, r *http.Request) {
	cat, ok := categoryParam(w, r)
	if !ok {
		return
	}
	plan, err := a.p.Plan(r.Context(), chi.URLParam(r, "room"), cat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func categoryParam(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	cat, err := model.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return cat, true
}

// decodeBody decodes and validates a JSON body, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("encode response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}
