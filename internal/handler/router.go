package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/port"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles what the router serves. Queue and Store may be nil when the
// desk runs without persistence.
type Deps struct {
	Desk           *service.Desk
	Auth           *service.AuthService
	Queue          *service.SyncQueue
	Store          port.Store
	Metrics        *observability.Metrics
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Store, d.Queue))
	r.Get("/readyz", readyzHandler(d.Store, logger))
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(requestMetrics(d.Metrics))

		r.Post("/auth/login", authLoginHandler(d.Auth, logger))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, logger))

			r.Post("/auth/logout", authLogoutHandler(d.Auth))
			r.Get("/me", meHandler())

			// Commissions
			r.Get("/commissions", listCommissionsHandler(d.Desk, logger))
			r.Post("/commissions", addCommissionHandler(d.Desk, logger))
			r.Get("/commissions/{id}", getCommissionHandler(d.Desk, logger))
			r.Put("/commissions/{id}", updateCommissionHandler(d.Desk, logger))
			r.Delete("/commissions/{id}", deleteCommissionHandler(d.Desk, logger))

			// Clients
			r.Get("/clients", listClientsHandler(d.Desk))
			r.Post("/clients", addClientHandler(d.Desk, logger))
			r.Put("/clients/{id}", updateClientHandler(d.Desk, logger))
			r.Put("/clients/{id}/note", updateClientNoteHandler(d.Desk, logger))
			r.Delete("/clients/{id}", deleteClientHandler(d.Desk, logger))

			// Users
			r.Get("/users", listUsersHandler(d.Desk))
			r.Post("/users", addUserHandler(d.Desk, logger))
			r.Put("/users/{id}", updateUserHandler(d.Desk, logger))
			r.Delete("/users/{id}", deleteUserHandler(d.Desk, logger))

			// Notices and goal
			r.Get("/notices", listNoticesHandler(d.Desk))
			r.Post("/notices", addNoticeHandler(d.Desk, logger))
			r.Delete("/notices/{id}", deleteNoticeHandler(d.Desk, logger))
			r.Get("/goal", getGoalHandler(d.Desk))
			r.Put("/goal", updateGoalHandler(d.Desk, logger))

			// Dashboard and administration
			r.Get("/dashboard/stats", statsHandler(d.Desk))
			r.Get("/dashboard/commercial-chart", commercialChartHandler(d.Desk, logger))
			r.Get("/audit-logs", auditLogsHandler(d.Desk, logger))
			r.Get("/sync/status", syncStatusHandler(d.Queue))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(store port.Store, queue *service.SyncQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "desk-api", Status: "healthy", LastChecked: now},
		}

		backend := ""
		if store != nil {
			backend = store.Name()
			status := "healthy"
			var latency int64
			if p, ok := store.(port.Pinger); ok {
				start := time.Now()
				if err := p.Ping(r.Context()); err != nil {
					status = "degraded"
				}
				latency = time.Since(start).Milliseconds()
			}
			services = append(services, domain.ServiceHealth{
				Name: backend, Status: status, LatencyMs: latency, LastChecked: now,
			})
		}
		if queue != nil {
			status := "healthy"
			for _, s := range queue.Status() {
				if s.State == domain.SyncFailed {
					status = "degraded"
					break
				}
			}
			services = append(services, domain.ServiceHealth{Name: "sync-queue", Status: status, LastChecked: now})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Backend:  backend,
			Services: services,
		})
	}
}

func readyzHandler(store port.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := store.(port.Pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				logger.Warn("readiness: store unreachable", zap.String("backend", store.Name()), zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
