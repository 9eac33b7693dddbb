package tracker

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/chatledger/internal/http/auth"
	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

// maxPreviewBytes bounds the preview request body.
const maxPreviewBytes = 64 << 10

type Handler struct {
	svc      *tracker.Service
	trackers []*tracker.Tracker
}

func NewHandler(svc *tracker.Service, trackers []*tracker.Tracker) *Handler {
	return &Handler{svc: svc, trackers: trackers}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{name}", h.get)
	r.Post("/{name}/run", h.run)
	r.With(middleware.AllowContentType("application/json")).Post("/{name}/preview", h.preview)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	resp := make([]trackerResponse, 0, len(h.trackers))

	for _, t := range h.trackers {
		if claims != nil && !claims.Allows(t.Name) {
			continue
		}

		resp = append(resp, toTrackerResponse(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.lookup(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toTrackerResponse(t))
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	t, err := h.lookup(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var opts tracker.RunOptions

	if s := r.URL.Query().Get("dry_run"); s != "" {
		if opts.DryRun, err = strconv.ParseBool(s); err != nil {
			http.Error(w, "invalid dry_run", http.StatusBadRequest)
			return
		}
	}

	res, err := h.svc.Run(r.Context(), t, opts)
	if err != nil {
		slog.Error("tracker run failed", "tracker", t.Name, "error", err)
		http.Error(w, "run failed", http.StatusBadGateway)

		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(res))
}

type previewRequest struct {
	Text string `json:"text"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	t, err := h.lookup(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req previewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBytes)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Preview(r.Context(), t, req.Text)
	if err != nil {
		slog.Error("tracker preview failed", "tracker", t.Name, "error", err)
		http.Error(w, "preview failed", http.StatusBadGateway)

		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(res))
}

// lookup resolves the {name} parameter among the trackers the caller may use.
func (h *Handler) lookup(r *http.Request) (*tracker.Tracker, error) {
	name := chi.URLParam(r, "name")

	if claims := auth.GetClaims(r.Context()); claims != nil && !claims.Allows(name) {
		return nil, tracker.ErrNotFound
	}

	for _, t := range h.trackers {
		if t.Name == name {
			return t, nil
		}
	}

	return nil, tracker.ErrNotFound
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
