package handler

import (
	"net/http"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Commissions
// ============================================================

func listCommissionsHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/commissions")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		f := parseCommissionFilter(r)
		list := desk.ListCommissions(ctx, user, f)
		span.SetAttributes(attribute.Int("commissions.count", len(list)))
		logger.Debug("commissions listed", zap.String("user_id", user.ID), zap.Int("count", len(list)))

		writeJSON(w, http.StatusOK, list)
	}
}

func getCommissionHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/commissions/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		c, err := desk.Commission(ctx, user, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func addCommissionHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/commissions")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.CommissionInput
		if !decodeBody(w, r, &in) {
			return
		}

		res, err := desk.AddCommission(ctx, user, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func updateCommissionHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/commissions/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var upd domain.CommissionUpdate
		if !decodeBody(w, r, &upd) {
			return
		}

		res, err := desk.UpdateCommission(ctx, user, chi.URLParam(r, "id"), upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func deleteCommissionHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/commissions/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		res, err := desk.DeleteCommission(ctx, user, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
