package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"leetcode_leaderboard/internal/aggregate"
	"leetcode_leaderboard/internal/dashboard"
	"leetcode_leaderboard/internal/snapshot"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type handler struct {
	snapshotPath  string
	profilePrefix string
}

// NewRouter serves the snapshot at snapshotPath as JSON, HTML and CSV.
// Every request reads the file afresh, so a completed refresh is visible
// immediately and an in-progress one never is.
func NewRouter(snapshotPath, profilePrefix string) http.Handler {
	h := &handler{snapshotPath: snapshotPath, profilePrefix: profilePrefix}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(cors chi.Router) {
		cors.Use(chiMiddleware.SetHeader("Access-Control-Allow-Origin", "*"))
		cors.Get("/data", h.serveData)
		cors.Options("/data", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
		})
	})

	r.Get("/", h.serveDashboard)
	r.Get("/export.csv", h.serveExport)

	return r
}

func (h *handler) serveData(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondWithError(w, http.StatusServiceUnavailable, "leaderboard data not available yet")
			return
		}
		log.Error().Err(err).Str("path", h.snapshotPath).Msg("Failed to read snapshot")
		respondWithError(w, http.StatusInternalServerError, "failed to read leaderboard data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *handler) serveDashboard(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readSnapshot(w)
	if !ok {
		return
	}

	state := dashboard.ParseViewState(r.URL.Query())

	var buf bytes.Buffer
	if err := dashboard.Render(&buf, state, records, h.profilePrefix); err != nil {
		log.Error().Err(err).Msg("Failed to render dashboard")
		respondWithError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *handler) serveExport(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readSnapshot(w)
	if !ok {
		return
	}

	state := dashboard.ParseViewState(r.URL.Query())

	var buf bytes.Buffer
	if err := dashboard.WriteCSV(&buf, state.Rows(records)); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV export")
		respondWithError(w, http.StatusInternalServerError, "failed to export leaderboard")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dashboard.ExportFilename(state.Section)))
	w.Write(buf.Bytes())
}

func (h *handler) readSnapshot(w http.ResponseWriter) ([]aggregate.Record, bool) {
	records, err := snapshot.Read(h.snapshotPath)
	if err == nil {
		return records, true
	}
	if errors.Is(err, snapshot.ErrNotFound) {
		respondWithError(w, http.StatusServiceUnavailable, "leaderboard data not available yet")
	} else {
		log.Error().Err(err).Str("path", h.snapshotPath).Msg("Failed to read snapshot")
		respondWithError(w, http.StatusInternalServerError, "failed to read leaderboard data")
	}
	return nil, false
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			log.Debug().
				Str("request_id", chiMiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		}()

		next.ServeHTTP(ww, r)
	})
}
