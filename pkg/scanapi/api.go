package scanapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/scankit/pkg/httpserver"
	"github.com/dmitrymomot/scankit/pkg/logger"
	"github.com/dmitrymomot/scankit/pkg/scanner"
	"github.com/dmitrymomot/scankit/pkg/scanspec"
	"github.com/dmitrymomot/scankit/pkg/source"
)

// DefaultMaxBodySize bounds the decoded scan input of one request.
const DefaultMaxBodySize = 8 << 20

// Library resolves machines by name. *scanspec.Library implements it.
type Library interface {
	Machine(name string) (*scanspec.Machine, error)
	Names() []string
}

// API serves scans over HTTP.
type API struct {
	lib      Library
	log      *slog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	maxBody  int64
	maxSteps int
	checks   []httpserver.Check
}

type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics registers scan metrics with reg and serves them on /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(a *API) {
		if reg != nil {
			a.metrics = NewMetrics(reg)
			a.gatherer = reg
		}
	}
}

// WithMaxBodySize limits the decoded input size. Larger bodies get 413.
func WithMaxBodySize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

// WithMaxSteps caps the steps of every scan. A machine's own lower limit
// still applies.
func WithMaxSteps(n int) Option {
	return func(a *API) { a.maxSteps = n }
}

// WithReadinessCheck adds a dependency checked by /ready.
func WithReadinessCheck(c httpserver.Check) Option {
	return func(a *API) {
		if c.Fn != nil {
			a.checks = append(a.checks, c)
		}
	}
}

// New creates the API over lib.
func New(lib Library, opts ...Option) *API {
	a := &API{
		lib:     lib,
		log:     logger.Discard(),
		maxBody: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("scanapi"))
	a.checks = append([]httpserver.Check{{Name: "machines", Fn: a.hasMachines}}, a.checks...)
	return a
}

// Router returns the HTTP handler:
//
//	GET  /health                 liveness
//	GET  /ready                  readiness
//	GET  /metrics                Prometheus metrics, with WithMetrics
//	GET  /machines               machine names
//	GET  /machines/{name}        machine description
//	POST /machines/{name}/scan   scan the request body
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ScanIDMiddleware)

	r.Get("/health", httpserver.HealthCheckHandler(a.log))
	r.Get("/ready", httpserver.HealthCheckHandler(a.log, a.checks...))
	if a.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", a.listMachines)
		r.Get("/{name}", a.describeMachine)
		r.Post("/{name}/scan", a.scan)
	})
	return r
}

func (a *API) hasMachines(context.Context) error {
	if len(a.lib.Names()) == 0 {
		return errors.New("no machines loaded")
	}
	return nil
}

func (a *API) listMachines(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, http.StatusOK, Response{Data: map[string][]string{"machines": a.lib.Names()}})
}

func (a *API) describeMachine(w http.ResponseWriter, r *http.Request) {
	m, err := a.lib.Machine(chi.URLParam(r, "name"))
	if err != nil {
		a.fail(w, r, http.StatusNotFound, "unknown_machine", err, nil)
		return
	}
	a.respond(w, r, http.StatusOK, Response{Data: MachineInfo{
		Name:        m.Name,
		Description: m.Description,
		Initial:     m.Table.Initial(),
		States:      m.Table.States(),
		MaxSteps:    m.MaxSteps(),
	}})
}

// scan runs a machine over the request body. Query parameters:
//
//	start    byte offset to start at (default 0)
//	state    state to start in (default: the machine's initial state)
//	charset  IANA charset of the body (default UTF-8)
//	normalize=true  convert the body to NFC first
func (a *API) scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	m, err := a.lib.Machine(name)
	if err != nil {
		a.fail(w, r, http.StatusNotFound, "unknown_machine", err, nil)
		return
	}

	q := r.URL.Query()
	start := 0
	if s := q.Get("start"); s != "" {
		start, err = strconv.Atoi(s)
		if err != nil || start < 0 {
			a.fail(w, r, http.StatusBadRequest, "invalid_parameter", fmt.Errorf("start must be a non-negative integer, got %q", s), nil)
			return
		}
	}

	readOpts := []source.Option{source.WithCharset(q.Get("charset")), source.WithMaxSize(a.maxBody)}
	if q.Get("normalize") == "true" {
		readOpts = append(readOpts, source.WithNormalize())
	}
	buf, err := source.Read(r.Body, readOpts...)
	switch {
	case errors.Is(err, source.ErrInputTooLarge):
		a.fail(w, r, http.StatusRequestEntityTooLarge, "input_too_large", err, nil)
		return
	case errors.Is(err, source.ErrUnknownCharset):
		a.fail(w, r, http.StatusBadRequest, "unknown_charset", err, nil)
		return
	case err != nil:
		a.fail(w, r, http.StatusBadRequest, "unreadable_input", err, nil)
		return
	}
	if start > buf.Len() {
		a.fail(w, r, http.StatusBadRequest, "invalid_parameter",
			fmt.Errorf("start %d is beyond the end of input (%d bytes)", start, buf.Len()), nil)
		return
	}
	buf.Seek(start)

	runOpts := []scanner.RunOption{scanner.WithLogger(a.log.With(logger.Machine(name)))}
	if limit := a.stepLimit(m); limit > 0 {
		runOpts = append(runOpts, scanner.WithMaxSteps(limit))
	}
	if st := q.Get("state"); st != "" {
		runOpts = append(runOpts, scanner.WithStartState(st))
	}

	began := time.Now()
	res, err := m.Run(ctx, buf, runOpts...)
	elapsed := time.Since(began)
	a.metrics.observe(name, outcome(res, err), res.Steps, buf.Len(), elapsed)

	if err != nil {
		a.scanFailed(w, r, err)
		return
	}

	a.log.InfoContext(ctx, "scan finished",
		logger.Machine(name),
		logger.Steps(res.Steps),
		logger.Position(res.Pos),
		slog.Bool("found", res.Found),
		logger.Duration(elapsed),
	)
	a.respond(w, r, http.StatusOK, Response{Data: ScanResult{
		ScanID:  ScanIDFromContext(ctx),
		Machine: name,
		Found:   res.Found,
		Exited:  res.Exited,
		Value:   res.Value,
		Pos:     res.Pos,
		Steps:   res.Steps,
	}})
}

func (a *API) stepLimit(m *scanspec.Machine) int {
	own := m.MaxSteps()
	switch {
	case a.maxSteps <= 0:
		return own
	case own <= 0:
		return a.maxSteps
	default:
		return min(own, a.maxSteps)
	}
}

func outcome(res scanner.Result, err error) string {
	switch {
	case scanner.IsNoApplicableTransitionError(err):
		return OutcomeNoTransition
	case scanner.IsStepLimitError(err):
		return OutcomeStepLimit
	case err != nil:
		return OutcomeError
	case res.Exited:
		return OutcomeExited
	case res.Found:
		return OutcomeFallback
	default:
		return OutcomeNoResult
	}
}

func (a *API) scanFailed(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nat *scanner.NoApplicableTransitionError
		sle *scanner.StepLimitError
	)
	switch {
	case errors.As(err, &nat):
		a.fail(w, r, http.StatusUnprocessableEntity, "no_applicable_transition", err, map[string]any{
			"state":  nat.State,
			"pos":    nat.Pos,
			"char":   string(nat.Char),
			"line":   nat.Line,
			"column": nat.Column,
		})
	case errors.As(err, &sle):
		a.fail(w, r, http.StatusUnprocessableEntity, "step_limit", err, map[string]any{
			"state": sle.State,
			"pos":   sle.Pos,
			"limit": sle.Limit,
		})
	case errors.Is(err, scanner.ErrUnknownState):
		a.fail(w, r, http.StatusBadRequest, "unknown_state", err, nil)
	case errors.Is(err, scanner.ErrAdvanceFailed):
		a.fail(w, r, http.StatusUnprocessableEntity, "advance_failed", err, nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.fail(w, r, http.StatusServiceUnavailable, "scan_interrupted", err, nil)
	default:
		a.fail(w, r, http.StatusInternalServerError, "internal_error", err, nil)
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, status int, code string, err error, details map[string]any) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.log.Log(r.Context(), level, "scan request failed",
		slog.Int("status", status),
		slog.String("code", code),
		logger.Error(err),
	)
	a.respond(w, r, status, Response{Error: &ErrorDetail{Code: code, Message: err.Error(), Details: details}})
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, status int, body Response) {
	if err := writeJSON(w, status, body); err != nil {
		a.log.ErrorContext(r.Context(), "failed to write response", logger.Error(err))
	}
}
