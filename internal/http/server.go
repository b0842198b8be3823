package http

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fuel-tracker/internal/core"
	applog "fuel-tracker/internal/log"
	"fuel-tracker/internal/service"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 16 << 20
	maxRecentLimit = 100
)

// Server exposes the HTTP API for the fuel tracker.
type Server struct {
	tracker *service.Tracker
	logger  *slog.Logger
	mux     *http.ServeMux
}

// NewServer constructs a Server backed by the provided tracker.
func NewServer(tracker *service.Tracker, logger *slog.Logger) *Server {
	if tracker == nil {
		panic("nil Tracker")
	}
	s := &Server{
		tracker: tracker,
		logger:  applog.WithComponent(logger, applog.ComponentHTTP),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root HTTP handler with middleware attached.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.gzipMiddleware(s.mux))
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/api/entries", s.handleEntries)
	s.mux.HandleFunc("/api/entries/", s.handleEntryByID)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/stats/", s.handleStats)
	s.mux.HandleFunc("/api/export/", s.handleExport)
	s.mux.HandleFunc("/api/import", s.handleImport)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listEntries(w, r)
	case http.MethodPost:
		s.createEntry(w, r)
	case http.MethodDelete:
		s.clearEntries(w, r)
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	if rest == "" || strings.ContainsRune(rest, '/') {
		http.NotFound(w, r)
		return
	}
	if rest == "recent" {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w, http.MethodGet)
			return
		}
		s.recentEntries(w, r)
		return
	}

	id := core.ID(rest)
	switch r.Method {
	case http.MethodPut:
		s.updateEntry(w, r, id)
	case http.MethodDelete:
		s.deleteEntry(w, r, id)
	default:
		s.methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.tracker.Settings(r.Context()))
	case http.MethodPut:
		s.saveSettings(w, r)
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()
	f := s.tracker.Formatter(ctx)
	switch strings.TrimPrefix(r.URL.Path, "/api/stats/") {
	case "monthly":
		s.writeJSON(w, http.StatusOK, newMonthlyViews(s.tracker.MonthlyStats(ctx), f))
	case "yearly":
		s.writeJSON(w, http.StatusOK, newYearlyViews(s.tracker.YearlyStats(ctx), f))
	case "current-month":
		s.writeJSON(w, http.StatusOK, newCurrentMonthView(s.tracker.CurrentMonth(ctx), f))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}
	format := strings.TrimPrefix(r.URL.Path, "/api/export/")
	switch format {
	case "json":
		s.exportJSON(w, r)
	case "csv":
		s.exportCSV(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}
	entries, err := decodeImport(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.tracker.ImportEntries(r.Context(), entries)
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.writeJSON(w, http.StatusOK, newEntryViews(s.tracker.Entries(ctx), s.tracker.Formatter(ctx)))
}

func (s *Server) recentEntries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecentLimit {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", maxRecentLimit))
			return
		}
		limit = n
	}
	ctx := r.Context()
	s.writeJSON(w, http.StatusOK, newEntryViews(s.tracker.RecentEntries(ctx, limit), s.tracker.Formatter(ctx)))
}

type entryPayload struct {
	Date     string   `json:"date"`
	Cost     float64  `json:"cost"`
	Amount   float64  `json:"amount"`
	Unit     string   `json:"unit"`
	Odometer *float64 `json:"odometer"`
	Notes    string   `json:"notes"`
}

func (p entryPayload) parse() (time.Time, core.Unit, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return time.Time{}, "", err
	}
	if p.Unit == "" {
		return date, "", nil
	}
	unit, err := core.ParseUnit(p.Unit)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, unit, nil
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	date, unit, err := payload.parse()
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	entry, err := s.tracker.AddEntry(r.Context(), core.CreateEntryParams{
		Date:     date,
		Cost:     payload.Cost,
		Amount:   payload.Amount,
		Unit:     unit,
		Odometer: payload.Odometer,
		Notes:    payload.Notes,
	})
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request, id core.ID) {
	var payload entryPayload
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	date, unit, err := payload.parse()
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	entry, err := s.tracker.UpdateEntry(r.Context(), id, core.UpdateEntryParams{
		Date:     date,
		Cost:     payload.Cost,
		Amount:   payload.Amount,
		Unit:     unit,
		Odometer: payload.Odometer,
		Notes:    payload.Notes,
	})
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, id core.ID) {
	if err := s.tracker.DeleteEntry(r.Context(), id); err != nil {
		s.handleCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearEntries(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ClearEntries(r.Context()); err != nil {
		s.handleCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingsPayload struct {
	Language string `json:"language"`
	Currency string `json:"currency"`
	Unit     string `json:"unit"`
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	settings, err := s.tracker.SaveSettings(r.Context(), core.Settings{
		Language: payload.Language,
		Currency: payload.Currency,
		Unit:     core.Unit(payload.Unit),
	})
	if err != nil {
		s.handleCoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

type exportDocument struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Settings   core.Settings    `json:"settings"`
	Entries    []core.FuelEntry `json:"entries"`
}

func (s *Server) exportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.tracker.ExportEntries(ctx)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	doc := exportDocument{
		ExportedAt: time.Now().UTC(),
		Settings:   s.tracker.Settings(ctx),
		Entries:    entries,
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=fuel-entries.json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		s.logger.Error("export json", applog.FieldError, err)
	}
}

var csvHeader = []string{"id", "date", "cost", "amount", "unit", "price_per_unit", "odometer", "notes"}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := s.tracker.ExportEntries(r.Context())
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=fuel-entries.csv")

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		s.logger.Error("export csv header", applog.FieldError, err)
		return
	}

	for _, entry := range entries {
		odometer := ""
		if entry.Odometer != nil {
			odometer = formatFloat(*entry.Odometer)
		}
		record := []string{
			string(entry.ID),
			entry.Date.UTC().Format(time.RFC3339),
			formatFloat(entry.Cost),
			formatFloat(entry.Amount),
			string(entry.Unit),
			formatFloat(entry.PricePerUnit),
			odometer,
			entry.Notes,
		}
		if err := writer.Write(record); err != nil {
			s.logger.Error("export csv entry", applog.FieldError, err, applog.FieldID, string(entry.ID))
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		s.logger.Error("export csv flush", applog.FieldError, err)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lrw, r)

		level := slog.LevelInfo
		switch {
		case lrw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case lrw.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, lrw.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (s *Server) gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzip.NewWriter(w)
		defer gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		grw := &gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(grw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	*gzip.Writer
}

func (w *gzipResponseWriter) Header() http.Header {
	return w.ResponseWriter.Header()
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	w.ResponseWriter.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func decodeJSON(r io.Reader, dst any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(new(struct{})); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after JSON payload")
		}
		return err
	}
	return nil
}

// decodeImport accepts either a bare array of entries, as written by the
// mobile app, or an export document with an "entries" field.
func decodeImport(r io.Reader) ([]core.FuelEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty import payload")
	}

	if data[0] == '[' {
		var entries []core.FuelEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode entries: %w", err)
		}
		return entries, nil
	}

	var doc struct {
		Entries []core.FuelEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode export document: %w", err)
	}
	if doc.Entries == nil {
		return nil, errors.New(`import payload has no "entries"`)
	}
	return doc.Entries, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write json", applog.FieldError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ","))
	}
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func (s *Server) handleStoreError(w http.ResponseWriter, err error) {
	s.logger.Error("store error", applog.FieldError, err)
	s.writeError(w, http.StatusInternalServerError, errors.New("failed to access datastore"))
}

func (s *Server) handleCoreError(w http.ResponseWriter, err error) {
	var ve core.ValidationErrors
	switch {
	case errors.Is(err, core.ErrEntryNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.As(err, &ve):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": ve,
		})
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrInvalidUnit):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.handleStoreError(w, err)
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
