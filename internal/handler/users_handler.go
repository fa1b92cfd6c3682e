package handler

import (
	"net/http"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Users
// ============================================================

func listUsersHandler(desk *service.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/users")
		defer span.End()

		writeJSON(w, http.StatusOK, desk.Users(ctx))
	}
}

func addUserHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.UserInput
		if !decodeBody(w, r, &in) {
			return
		}

		users, err := desk.AddUser(ctx, user, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, users)
	}
}

func updateUserHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/users/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in domain.UserInput
		if !decodeBody(w, r, &in) {
			return
		}

		users, err := desk.UpdateUser(ctx, user, chi.URLParam(r, "id"), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func deleteUserHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		users, err := desk.DeleteUser(ctx, user, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}
