package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/unsplash-client/internal/config"
	"github.com/Sternrassler/unsplash-client/pkg/metrics"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides server.listen)",
			},
		},
		Action: withApp(runServe),
	}
}

func runServe(ctx context.Context, cmd *cli.Command, a *app) error {
	addr := a.cfg.Server.Listen
	if cmd.IsSet("listen") {
		addr = cmd.String("listen")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Msg("Serving API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info().Msg("Shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP API on top of the app.
func newRouter(a *app) http.Handler {
	h := &handlers{app: a}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/photos", h.photos)
		r.Get("/photos/{id}", h.photo)
		r.Get("/search", h.search)
		r.Get("/recent", h.recent)
		r.Get("/favorites", h.favorites)
		r.Put("/favorites/{id}", h.like)
		r.Delete("/favorites/{id}", h.unlike)
	})
	return r
}

type handlers struct {
	app *app
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	state, err := h.app.tracker.GetState(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"ratelimit": state,
	})
}

func (h *handlers) photos(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := h.paging(r, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	photos, err := h.app.repo.Photos(r.Context(), page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *handlers) photo(w http.ResponseWriter, r *http.Request) {
	detail, err := h.app.details.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"photo":  detail.Photo,
		"liked":  detail.Liked,
		"origin": detail.Origin,
	})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	text := params.Get("query")
	if text == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	q, err := buildQuery(text, params.Get("order_by"), params.Get("orientation"), params.Get("color"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, perPage, err := h.paging(r, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.app.repo.Search(r.Context(), q, page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if page == 1 {
		if _, err := h.app.recents.Create(r.Context(), q); err != nil {
			h.app.logger.Warn().Err(err).Msg("Failed to record recent query")
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) recent(w http.ResponseWriter, r *http.Request) {
	recents, err := h.app.recents.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	type recentJSON struct {
		ID        string         `json:"id"`
		Query     unsplash.Query `json:"query"`
		UpdatedAt time.Time      `json:"updated_at"`
	}
	out := make([]recentJSON, len(recents))
	for i, rq := range recents {
		out[i] = recentJSON{ID: rq.ID, Query: rq.Query, UpdatedAt: rq.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) favorites(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := h.paging(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	photos, err := h.app.favorites.Page(r.Context(), page, perPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *handlers) like(w http.ResponseWriter, r *http.Request) {
	detail, err := h.app.details.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.app.details.Like(r.Context(), detail.Photo); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) unlike(w http.ResponseWriter, r *http.Request) {
	if err := h.app.details.Unlike(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// paging reads page and per_page. base is the first page number.
func (h *handlers) paging(r *http.Request, base int) (int, int, error) {
	page, err := intQuery(r, "page", base)
	if err != nil || page < base {
		return 0, 0, errors.New("page must be a number >= " + strconv.Itoa(base))
	}
	perPage, err := intQuery(r, "per_page", h.app.cfg.API.PageSize)
	if err != nil || perPage < 1 || perPage > config.MaxPageSize {
		return 0, 0, errors.New("per_page must be between 1 and " + strconv.Itoa(config.MaxPageSize))
	}
	return page, perPage, nil
}

// fail maps err to a response status. Upstream client errors keep their
// code; anything else from the API is a bad gateway.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var netErr *network.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &netErr) && netErr.Kind == network.KindClient:
		status = netErr.StatusCode
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	}

	h.app.logger.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Msg("Request failed")
	writeError(w, status, err.Error())
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
