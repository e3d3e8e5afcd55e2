// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

package api

import (
	"net/http"
	"time"

	"github.com/mcroft/vitrine/internal/logging"
	"github.com/mcroft/vitrine/internal/models"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func healthResponse(status string, checks map[string]string) models.APIResponse {
	return models.APIResponse{
		Status: "success",
		Data: HealthStatus{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
}

// Health reports overall service health including the database check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	checks := map[string]string{"database": "ok"}
	status := "healthy"
	code := http.StatusOK

	if err := h.store.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Health check: database unreachable")
		checks["database"] = "unreachable"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	rw.writeJSON(code, healthResponse(status, checks))
}

// HealthLive is the liveness probe. It answers as long as the process
// serves requests; no dependency checks.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(HealthStatus{Status: "alive", Timestamp: time.Now().UTC()})
}

// HealthReady is the readiness probe; it fails while the database is
// unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.store.Ping(r.Context()); err != nil {
		rw.writeJSON(http.StatusServiceUnavailable, healthResponse("not ready", map[string]string{"database": "unreachable"}))
		return
	}

	rw.Success(HealthStatus{Status: "ready", Timestamp: time.Now().UTC()})
}
