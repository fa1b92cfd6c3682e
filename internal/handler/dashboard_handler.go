package handler

import (
	"net/http"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard and administration
// ============================================================

func statsHandler(desk *service.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/stats")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, desk.Stats(ctx, user))
	}
}

func commercialChartHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/commercial-chart")
		defer span.End()

		chart, err := desk.CommercialChart(ctx, r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, chart)
	}
}

func auditLogsHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/audit-logs")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		logs, err := desk.AuditLogs(ctx, user)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

// syncStatusHandler exposes the write-behind state per collection. Admin only.
func syncStatusHandler(queue *service.SyncQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		if !domain.CanViewAudit(user) {
			writeError(w, http.StatusForbidden, (&domain.ErrForbidden{Action: "view sync status"}).Error())
			return
		}
		status := []domain.CollectionSync{}
		if queue != nil {
			status = queue.Status()
		}
		writeJSON(w, http.StatusOK, status)
	}
}
