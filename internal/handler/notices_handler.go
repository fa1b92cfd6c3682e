package handler

import (
	"net/http"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Notices and monthly goal
// ============================================================

type goalBody struct {
	Goal float64 `json:"goal"`
}

func listNoticesHandler(desk *service.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/notices")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, desk.VisibleNotices(ctx, user, r.URL.Query().Get("q")))
	}
}

func addNoticeHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notices")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.NoticeInput
		if !decodeBody(w, r, &in) {
			return
		}

		notices, err := desk.AddNotice(ctx, user, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, notices)
	}
}

func deleteNoticeHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/notices/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		notices, err := desk.DeleteNotice(ctx, user, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, notices)
	}
}

func getGoalHandler(desk *service.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"goal": desk.Goal()})
	}
}

func updateGoalHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/goal")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var body goalBody
		if !decodeBody(w, r, &body) {
			return
		}

		goal, err := desk.UpdateGoal(ctx, user, body.Goal)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"goal": goal})
	}
}
