package api

import (
	"net/http"
	"strconv"

	"github.com/pulseworks/rustwatch/internal/history"
	"github.com/pulseworks/rustwatch/internal/monitor"
)

const defaultHistoryLimit = 50

type StatusHandler struct {
	monitor *monitor.Monitor
	store   *history.Store
}

func NewStatusHandler(m *monitor.Monitor, store *history.Store) *StatusHandler {
	return &StatusHandler{monitor: m, store: store}
}

// Status returns the current classification and last check result.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Status())
}

// History returns recent checks, newest first.
func (h *StatusHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := h.store.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query history")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
