// Package wsgi exposes a Registry over HTTP, mounted under a configurable
// root ("/_app-metrics" by default): list and CRUD individual metrics,
// and list/tag/untag by tag name. The package name is historical; the
// implementation is a plain net/http handler, not WSGI middleware.
package wsgi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/appmetrics/appmetrics"
)

// DefaultRoot is the path segment the handler is mounted under when Root
// is left empty.
const DefaultRoot = "_app-metrics"

// Handler serves the metrics HTTP surface over a Registry.
type Handler struct {
	// Registry is queried and mutated by the handler. Required.
	Registry *appmetrics.Registry

	// Root is the path prefix routes are mounted under, with a single
	// leading slash and no trailing slash ("/" + DefaultRoot when
	// NewHandler is given an empty root).
	Root string

	mux *http.ServeMux
}

// NewHandler builds a Handler over registry, ready to be mounted with
// http.Handle or used directly as an http.Handler.
func NewHandler(registry *appmetrics.Registry, root string) *Handler {
	if root == "" {
		root = DefaultRoot
	}
	root = "/" + strings.Trim(root, "/")

	h := &Handler{Registry: registry, Root: root, mux: http.NewServeMux()}
	h.mux.HandleFunc(root+"/metrics", h.handleMetricsList)
	h.mux.HandleFunc(root+"/metrics/", h.handleMetric)
	h.mux.HandleFunc(root+"/tags", h.handleTagsList)
	h.mux.HandleFunc(root+"/tags/", h.handleTag)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeText(w http.ResponseWriter, code int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`"` + text + `"`))
}

// writeError writes a JSON string body, matching the success responses'
// content type rather than net/http's default text/plain.
func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(msg)
}

func (h *Handler) handleMetricsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.Registry.Names())
}

// handleMetric dispatches GET/PUT/POST/DELETE on "<root>/metrics/<name>".
func (h *Handler) handleMetric(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, h.Root+"/metrics/")
	if name == "" {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.showMetric(w, name)
	case http.MethodPut:
		h.createMetric(w, r, name)
	case http.MethodPost:
		h.updateMetric(w, r, name)
	case http.MethodDelete:
		h.deleteMetric(w, name)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) showMetric(w http.ResponseWriter, name string) {
	snap, err := h.Registry.Snapshot(name)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "no such metric: "+name)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type createMetricBody struct {
	Type         string  `json:"type"`
	Size         int     `json:"size,omitempty"`
	WindowMillis int64   `json:"window_millis,omitempty"`
	Alpha        float64 `json:"alpha,omitempty"`
	TickMillis   int64   `json:"tick_millis,omitempty"`
}

func (h *Handler) createMetric(w http.ResponseWriter, r *http.Request, name string) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	var req createMetricBody
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Type == "" {
		h.writeError(w, http.StatusBadRequest, "metric type not provided")
		return
	}

	var opts []appmetrics.MetricOption
	if req.Type == "histogram" {
		opts = append(opts, appmetrics.WithReservoir(histogramSpec(req)))
	}
	if req.Type == "meter" && req.TickMillis > 0 {
		opts = append(opts, appmetrics.WithTickInterval(millis(req.TickMillis)))
	}

	if _, err := h.Registry.NewMetric(name, req.Type, opts...); err != nil {
		h.writeError(w, http.StatusBadRequest, "can't create metric "+name+": "+err.Error())
		return
	}
	h.writeText(w, http.StatusOK, "")
}

func (h *Handler) updateMetric(w http.ResponseWriter, r *http.Request, name string) {
	body, ok := h.decodeBody(w, r)
	if !ok {
		return
	}

	var req struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		h.writeError(w, http.StatusBadRequest, "metric value not provided")
		return
	}

	if err := h.Registry.Observe(name, *req.Value); err != nil {
		if errors.Is(err, appmetrics.ErrInvalidMetric) {
			h.writeError(w, http.StatusNotFound, "no such metric: "+name)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeText(w, http.StatusOK, "")
}

func (h *Handler) deleteMetric(w http.ResponseWriter, name string) {
	_, err := h.Registry.Metric(name)
	h.Registry.DeleteMetric(name)
	if err != nil {
		h.writeText(w, http.StatusOK, "not deleted")
		return
	}
	h.writeText(w, http.StatusOK, "deleted")
}

func (h *Handler) handleTagsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.Registry.TagNames())
}

// handleTag dispatches GET "<root>/tags/<tag>" and PUT/DELETE
// "<root>/tags/<tag>/<metric>".
func (h *Handler) handleTag(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, h.Root+"/tags/")
	parts := strings.SplitN(rest, "/", 2)

	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.showTag(w, r, parts[0])
	case 2:
		switch r.Method {
		case http.MethodPut:
			h.addTag(w, parts[0], parts[1])
		case http.MethodDelete:
			h.removeTag(w, parts[0], parts[1])
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		h.writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) showTag(w http.ResponseWriter, r *http.Request, tag string) {
	names := h.Registry.Tags(tag)
	if names == nil {
		h.writeError(w, http.StatusNotFound, "no such tag: "+tag)
		return
	}

	if r.URL.Query().Get("expand") == "true" {
		expanded := make(map[string]appmetrics.Snapshot, len(names))
		for _, name := range names {
			if snap, err := h.Registry.Snapshot(name); err == nil {
				expanded[name] = snap
			}
		}
		h.writeJSON(w, http.StatusOK, expanded)
		return
	}
	h.writeJSON(w, http.StatusOK, names)
}

func (h *Handler) addTag(w http.ResponseWriter, tag, name string) {
	if err := h.Registry.Tag(name, tag); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeText(w, http.StatusOK, "")
}

func (h *Handler) removeTag(w http.ResponseWriter, tag, name string) {
	if h.Registry.Untag(name, tag) {
		h.writeText(w, http.StatusOK, "deleted")
		return
	}
	h.writeText(w, http.StatusOK, "not deleted")
}
