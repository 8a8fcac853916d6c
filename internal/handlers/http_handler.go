package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/infrastructure/metrics"
	"github.com/asakaida/rolegate/internal/services/authorization"
	"github.com/hashicorp/go-hclog"
	"github.com/ory/herodot"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StatsProvider exposes the in-process request and decision counters
type StatsProvider interface {
	GetAPIMetrics() *metrics.APIMetrics
	GetDecisionMetrics() *metrics.DecisionMetrics
}

// MethodStats is the per-method part of the /v1/stats response
type MethodStats struct {
	Requests             uint64  `json:"requests"`
	Errors               uint64  `json:"errors"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
}

// DecisionStats is the access decision part of the /v1/stats response
type DecisionStats struct {
	Allowed  uint64            `json:"allowed"`
	Denied   uint64            `json:"denied"`
	ByReason map[string]uint64 `json:"by_reason"`
}

// StatsView is the /v1/stats response
type StatsView struct {
	Methods   map[string]*MethodStats `json:"methods"`
	Decisions DecisionStats           `json:"decisions"`
}

// HTTPHandler serves the admin HTTP endpoints: health, access checks, stats and metrics
type HTTPHandler struct {
	mux     *http.ServeMux
	manager authorization.PermissionManagerInterface
	health  HealthChecker
	stats   StatsProvider
	writer  *herodot.JSONWriter
	logger  hclog.Logger
}

// NewHTTPHandler creates a new HTTPHandler.
// stats and prom may be nil, in which case /v1/stats and /metrics are not served.
func NewHTTPHandler(
	manager authorization.PermissionManagerInterface,
	health HealthChecker,
	stats StatsProvider,
	prom http.Handler,
	logger hclog.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &HTTPHandler{
		mux:     http.NewServeMux(),
		manager: manager,
		health:  health,
		stats:   stats,
		writer:  herodot.NewJSONWriter(nil),
		logger:  logger.Named("http"),
	}

	h.mux.HandleFunc("GET /healthz", h.healthCheck)
	h.mux.HandleFunc("GET /v1/access", h.checkAccess)
	if stats != nil {
		h.mux.HandleFunc("GET /v1/stats", h.getStats)
	}
	if prom != nil {
		h.mux.Handle("GET /metrics", prom)
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *HTTPHandler) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		h.writer.WriteError(w, r, herodot.ErrInternalServerError.WithReason("Database is unreachable"))
		return
	}
	h.writer.Write(w, r, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) checkAccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := entities.RoleID(q.Get(fieldRole))
	resource := entities.ResourceID(q.Get(fieldResource))

	d, err := h.manager.Explain(r.Context(), role, q.Get(fieldAction), resource)
	if err != nil {
		if errors.Is(err, authorization.ErrInvalidArgument) {
			h.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason(err.Error()))
			return
		}
		h.logger.Error("access check failed", "error", err)
		h.writer.WriteError(w, r, herodot.ErrInternalServerError.WithReason("Failed to check access"))
		return
	}

	h.writer.Write(w, r, newCheckResult(d))
}

func (h *HTTPHandler) getStats(w http.ResponseWriter, r *http.Request) {
	api := h.stats.GetAPIMetrics()
	decisions := h.stats.GetDecisionMetrics()

	view := &StatsView{
		Methods: make(map[string]*MethodStats, len(api.RequestCounts)),
		Decisions: DecisionStats{
			Allowed:  decisions.Allowed,
			Denied:   decisions.Denied,
			ByReason: decisions.ByReason,
		},
	}
	for method, count := range api.RequestCounts {
		view.Methods[method] = &MethodStats{
			Requests:             count,
			Errors:               api.ErrorCounts[method],
			TotalDurationSeconds: api.TotalDurationSeconds[method],
		}
	}

	h.writer.Write(w, r, view)
}
