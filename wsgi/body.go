package wsgi

import (
	"io"
	"net/http"
	"time"

	"github.com/appmetrics/appmetrics"
)

// decodeBody enforces the "application/json" content type, returning
// false (having already written a response) on any failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	ctype := r.Header.Get("Content-Type")
	if ctype != "application/json" && ctype != "application/json; charset=utf-8" {
		h.writeError(w, http.StatusUnsupportedMediaType, "unsupported media type")
		return nil, false
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	return body, true
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// histogramSpec builds a ReservoirSpec from the optional reservoir
// parameters in a createMetricBody, defaulting to a uniform reservoir when
// none are given.
func histogramSpec(req createMetricBody) appmetrics.ReservoirSpec {
	switch {
	case req.Alpha > 0:
		return appmetrics.ExponentialDecayReservoirSpec(req.Size, req.Alpha)
	case req.WindowMillis > 0:
		return appmetrics.SlidingTimeReservoirSpec(millis(req.WindowMillis))
	case req.Size > 0:
		return appmetrics.SlidingCountReservoirSpec(req.Size)
	default:
		return appmetrics.UniformReservoir(0)
	}
}
