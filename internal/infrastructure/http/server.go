package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/domain"
	"optionquotes-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

// QuoteAPI is the quote service as seen by the HTTP layer.
type QuoteAPI interface {
	Upsert(ctx context.Context, records []domain.QuoteRecord) (domain.UpsertSummary, error)
	Cleanup(ctx context.Context, req application.CleanupRequest) (domain.CleanupResult, error)
	Latest(ctx context.Context, symbol string, limit int) ([]domain.QuoteRecord, error)
	Range(ctx context.Context, symbol string, start time.Time, end *time.Time) ([]domain.QuoteRecord, error)
	Aggregate(ctx context.Context, symbols []string, start time.Time, end *time.Time) ([]domain.AggregateRow, error)
	ListSymbols(ctx context.Context) ([]string, error)
	HealthCheck(ctx context.Context) (domain.HealthStatus, error)
}

type MetricsSink interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	ObservePool(h domain.HealthStatus)
	Handler() http.Handler
}

type Server struct {
	svc            QuoteAPI
	idem           application.IdempotencyStore
	metrics        MetricsSink
	defaultKeep    time.Duration
	requestTimeout time.Duration
}

type ServerOption func(*Server)

func WithIdempotency(store application.IdempotencyStore) ServerOption {
	return func(s *Server) { s.idem = store }
}

func WithMetrics(m MetricsSink) ServerOption { return func(s *Server) { s.metrics = m } }

// WithDefaultKeep sets the retention window used when a cleanup request omits "keep".
func WithDefaultKeep(d time.Duration) ServerOption { return func(s *Server) { s.defaultKeep = d } }

func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.requestTimeout = d }
}

func NewServer(svc QuoteAPI, opts ...ServerOption) *Server {
	s := &Server{svc: svc, idem: application.NoopIdempotency{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.HealthCheck(r.Context())
	if s.metrics != nil {
		s.metrics.ObservePool(st)
	}
	if err != nil {
		logx.WithFields(r.Context()).Warn("readyz_failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "db not ready")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) UpsertQuotes(w http.ResponseWriter, r *http.Request) {
	var body []quoteJSON
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	records := make([]domain.QuoteRecord, 0, len(body))
	for i, q := range body {
		rec, err := q.toDomain()
		if err != nil {
			writeError(w, http.StatusBadRequest, "record "+strconv.Itoa(i)+": "+err.Error())
			return
		}
		records = append(records, rec)
	}

	ctx := r.Context()
	key := r.Header.Get("X-Idempotency-Key")
	if key != "" {
		ok, err := s.idem.TryReserve(ctx, key)
		if err != nil {
			logx.WithFields(ctx).Warn("idempotency_reserve_failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "idempotency store unavailable")
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "duplicate request")
			return
		}
	}

	sum, err := s.svc.Upsert(ctx, records)
	if err != nil {
		if key != "" {
			if rerr := s.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				logx.WithFields(ctx).Warn("idempotency_release_failed", zap.Error(rerr))
			}
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type cleanupRequest struct {
	Symbols []string `json:"symbols"`
	All     bool     `json:"all"`
	Keep    string   `json:"keep"`
	DryRun  bool     `json:"dry_run"`
}

func (s *Server) Cleanup(w http.ResponseWriter, r *http.Request) {
	var body cleanupRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	keep := s.defaultKeep
	if body.Keep != "" {
		d, err := time.ParseDuration(body.Keep)
		if err != nil {
			writeError(w, http.StatusBadRequest, "keep must be a duration like 30m")
			return
		}
		keep = d
	}
	res, err := s.svc.Cleanup(r.Context(), application.CleanupRequest{
		Symbols:      body.Symbols,
		All:          body.All,
		KeepDuration: keep,
		DryRun:       body.DryRun,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) Latest(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultLatestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	out, err := s.svc.Latest(r.Context(), chi.URLParam(r, "symbol"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(out))
}

func (s *Server) Range(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.svc.Range(r.Context(), chi.URLParam(r, "symbol"), start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(out))
}

func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateParams(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var symbols []string
	if v := r.URL.Query().Get("symbols"); v != "" {
		symbols = strings.Split(v, ",")
	}
	out, err := s.svc.Aggregate(r.Context(), symbols, start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ListSymbols(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListSymbols(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func dateParams(r *http.Request) (time.Time, *time.Time, error) {
	q := r.URL.Query()
	start, err := domain.ParseDate(q.Get("start"))
	if err != nil {
		return time.Time{}, nil, err
	}
	if v := q.Get("end"); v != "" {
		end, err := domain.ParseDate(v)
		if err != nil {
			return time.Time{}, nil, err
		}
		return start, &end, nil
	}
	return start, nil, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		msg = "database unavailable"
	case status >= 500:
		msg = http.StatusText(status)
	}
	if status >= 500 {
		logx.WithFields(r.Context()).Error("request_failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrValidation), errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrConnection), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Message: msg, Timestamp: time.Now().UTC()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
