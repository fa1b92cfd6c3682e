package handler

import (
	"net/http"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Clients
// ============================================================

func listClientsHandler(desk *service.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients")
		defer span.End()

		writeJSON(w, http.StatusOK, desk.Clients(ctx, r.URL.Query().Get("q")))
	}
}

func addClientHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := desk.AddClient(ctx, user, req.Name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, res)
	}
}

func updateClientHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/clients/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var upd domain.ClientUpdate
		if !decodeBody(w, r, &upd) {
			return
		}

		res, err := desk.UpdateClient(ctx, user, chi.URLParam(r, "id"), upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func updateClientNoteHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/clients/{id}/note")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Note string `json:"note"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := desk.UpdateClientNote(ctx, user, chi.URLParam(r, "id"), req.Note)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func deleteClientHandler(desk *service.Desk, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/clients/{id}")
		defer span.End()

		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		res, err := desk.DeleteClient(ctx, user, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
