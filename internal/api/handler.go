// Package api provides HTTP handlers for the metric query REST API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/spf13/cast"

	"prism/internal/config"
	"prism/internal/domain"
	"prism/internal/middleware"
	"prism/internal/service/chart"
	"prism/internal/service/query"
)

// Handler serves the metric query API.
type Handler struct {
	queries *query.Service
	logger  *slog.Logger
}

// NewHandler creates a Handler over the query service.
func NewHandler(queries *query.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{queries: queries, logger: logger}
}

// Router builds the chi router with middleware and all API routes.
func (h *Handler) Router(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/explores", h.listExplores)
		r.Get("/explores/{name}", h.getExplore)
		r.Post("/query/compile", h.compileQuery)
		r.Post("/query/run", h.runQuery)
		r.Post("/charts/pie", h.pieChart)
		r.Post("/charts/conditional-formatting", h.conditionalFormatting)
		r.Get("/history", h.listHistory)
		r.Delete("/history", h.pruneHistory)
	})
	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Code: status, Message: err.Error()})
}

func (h *Handler) renderBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Code: http.StatusBadRequest, Message: "invalid request body: " + err.Error()})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) listExplores(w http.ResponseWriter, r *http.Request) {
	names := h.queries.Registry().Names()
	explores := make([]*domain.Explore, 0, len(names))
	for _, name := range names {
		explore, err := h.queries.Registry().Get(name)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		explores = append(explores, explore)
	}
	render.JSON(w, r, map[string]interface{}{"data": explores})
}

func (h *Handler) getExplore(w http.ResponseWriter, r *http.Request) {
	explore, err := h.queries.Registry().Get(chi.URLParam(r, "name"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, explore)
}

func (h *Handler) compileQuery(w http.ResponseWriter, r *http.Request) {
	var sel domain.QuerySelection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		h.renderBadRequest(w, r, err)
		return
	}
	q, _, err := h.queries.Compile(sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, q)
}

func (h *Handler) runQuery(w http.ResponseWriter, r *http.Request) {
	var sel domain.QuerySelection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		h.renderBadRequest(w, r, err)
		return
	}
	result, err := h.queries.Run(r.Context(), sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

type pieChartRequest struct {
	domain.QuerySelection
	PieConfig domain.PieChartConfig `json:"pieConfig"`
}

type pieChartResponse struct {
	NoChart bool                        `json:"noChart"`
	Series  []domain.PieSeriesDataPoint `json:"series,omitempty"`
}

func (h *Handler) pieChart(w http.ResponseWriter, r *http.Request) {
	var req pieChartRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderBadRequest(w, r, err)
		return
	}
	series, err := h.queries.PieChart(r.Context(), req.QuerySelection, req.PieConfig)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	// A nil series is the "no chart" sentinel, distinct from an empty one.
	render.JSON(w, r, pieChartResponse{NoChart: series == nil, Series: series})
}

type conditionalFormattingRequest struct {
	domain.QuerySelection
	Configs []domain.ConditionalFormattingConfig `json:"conditionalFormattings"`
}

type conditionalFormattingResponse struct {
	*query.RunResult
	CellStyles []map[domain.FieldID]chart.CellStyle `json:"cellStyles"`
}

func (h *Handler) conditionalFormatting(w http.ResponseWriter, r *http.Request) {
	var req conditionalFormattingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderBadRequest(w, r, err)
		return
	}
	result, styles, err := h.queries.ConditionalStyles(r.Context(), req.QuerySelection, req.Configs)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, conditionalFormattingResponse{RunResult: result, CellStyles: styles})
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.renderError(w, r, domain.ErrValidation("limit must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := h.queries.History(r.Context(), limit)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"data": entries})
}

func (h *Handler) pruneHistory(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("before")
	if raw == "" {
		h.renderError(w, r, domain.ErrValidation("before is required"))
		return
	}
	cutoff, err := cast.StringToDate(raw)
	if err != nil {
		h.renderError(w, r, domain.ErrValidation("before must be a date or timestamp"))
		return
	}
	deleted, err := h.queries.PruneHistory(r.Context(), cutoff)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"data": map[string]int64{"deleted": deleted}})
}
