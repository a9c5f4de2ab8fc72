package ui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"claimsight/ai"
	"claimsight/domain/claims"
	"claimsight/domain/insight"
	"claimsight/internal/errors"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	a.writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"error":     err.Error(),
		"code":      errors.GetCode(err),
		"requestId": RequestIDFrom(r.Context()),
	})
}

// filtersFromRequest normalizes the querystring into the filter set. Bad
// values fail open to defaults inside Normalize.
func filtersFromRequest(r *http.Request) claims.FilterParams {
	q := r.URL.Query()
	raw := make(map[string]string)
	for _, key := range []string{
		"entityId", "formulary", "state", "mony", "manufacturer",
		"drug", "ndc", "dateStart", "dateEnd", "groupId",
		"includeFlaggedNdcs", "limit",
	} {
		if v := q.Get(key); v != "" {
			raw[key] = v
		}
	}
	return claims.Normalize(raw)
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleOverview(w http.ResponseWriter, r *http.Request) {
	data, err := a.dashboards.Overview(r.Context(), filtersFromRequest(r))
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to build overview"))
		return
	}
	a.writeJSON(w, http.StatusOK, data)
}

func (a *App) handleClaims(w http.ResponseWriter, r *http.Request) {
	data, err := a.dashboards.Explorer(r.Context(), filtersFromRequest(r))
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to build claims explorer"))
		return
	}
	a.writeJSON(w, http.StatusOK, data)
}

func (a *App) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	f := filtersFromRequest(r)
	report, err := a.anomalies.Report(r.Context(), f.EntityID)
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to build anomaly report"))
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

func (a *App) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := a.filters.Options(r.Context(), filtersFromRequest(r))
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to list filter options"))
		return
	}
	a.writeJSON(w, http.StatusOK, opts)
}

func (a *App) handleEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := a.filters.Entities(r.Context())
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to list entities"))
		return
	}
	a.writeJSON(w, http.StatusOK, entities)
}

func (a *App) handleInsights(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = insight.ViewOverview
	}
	if view != insight.ViewOverview && view != insight.ViewExplorer {
		a.writeError(w, r, errors.InvalidInput("view must be overview or explorer"))
		return
	}
	max := 0
	if v := r.URL.Query().Get("max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			max = n
		}
	}

	cards, err := a.insights.Cards(r.Context(), filtersFromRequest(r), view, max)
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to generate insights"))
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"insights": cards})
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = insight.ViewOverview
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		a.writeError(w, r, errors.InvalidInput("format must be csv or xlsx"))
		return
	}

	data, filename, contentType, err := a.exports.Document(
		r.Context(), view, filtersFromRequest(r), format, time.Now())
	if err != nil {
		a.writeError(w, r, errors.Wrap(err, "failed to build export"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.logger.Error("export write error: %v", err)
	}
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	if a.chat == nil {
		a.writeError(w, r, errors.Unavailable("chat assistant is not configured"))
		return
	}

	var req ai.ChatRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, errors.InvalidInput("malformed chat request body"))
		return
	}

	reply, err := a.chat.Reply(r.Context(), req)
	if err != nil {
		if verr := req.Validate(); verr != nil {
			a.writeError(w, r, errors.InvalidInput(verr.Error()))
			return
		}
		a.writeError(w, r, errors.ExternalServiceError("chat", err))
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
