package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

type handler struct {
	log      *slog.Logger
	searcher Searcher
	stats    models.Statistics
	overview []byte
	health   Pinger
	page     *template.Template
}

type pageData struct {
	Address    string
	Stats      models.Statistics
	Result     *resultView
	Overview   *OverviewMap
	Focused    *FocusedMap
	DataSource string
}

func newHandler(opts Options) (*handler, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	overview, err := overviewLayer(opts.Catalog.Deposits()).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode overview layer: %w", err)
	}

	return &handler{
		log:      opts.Logger,
		searcher: opts.Searcher,
		stats:    opts.Catalog.Statistics(),
		overview: overview,
		health:   opts.Health,
		page:     page,
	}, nil
}

// Index renders the search page. Without an address it shows the national overview.
func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Address:    r.URL.Query().Get("address"),
		Stats:      h.stats,
		DataSource: dataSource,
	}

	result, err := h.search(r.Context(), data.Address)
	switch {
	case errors.Is(err, service.ErrEmptyAddress):
		data.Overview = newOverviewMap()
	case err != nil:
		h.log.ErrorContext(r.Context(), "Search failed", "address", data.Address, "error", err)
		http.Error(w, "search failed", http.StatusServiceUnavailable)
		return
	default:
		data.Result = newResultView(result)
		data.Focused = newFocusedMap(result)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = h.page.ExecuteTemplate(w, "index.html", data); err != nil {
		h.log.ErrorContext(r.Context(), "failed to render page", "error", err)
	}
}

// Search answers /api/v1/search?address=.
func (h *handler) Search(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")

	result, err := h.search(r.Context(), address)
	switch {
	case errors.Is(err, service.ErrEmptyAddress):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address parameter is required"})
	case err != nil:
		h.log.ErrorContext(r.Context(), "Search failed", "address", address, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "search failed"})
	default:
		writeJSON(w, http.StatusOK, newSearchJSON(result))
	}
}

// Stats answers /api/v1/stats with the national totals.
func (h *handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

// Overview serves every deposit as GeoJSON for the clustered national map.
func (h *handler) Overview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(h.overview); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

// Health reports OK, or 503 when the configured backing store does not answer.
func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	h.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (h *handler) search(ctx context.Context, address string) (*service.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	return h.searcher.Search(ctx, address)
}
