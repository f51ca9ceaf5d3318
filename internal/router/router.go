package router

import (
	"net/http"

	"github.com/bakehouse-pos/api/internal/config"
	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/handler"
	mw "github.com/bakehouse-pos/api/internal/middleware"
	"github.com/bakehouse-pos/api/internal/service"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Store  *store.Store
	Orders *service.OrderService
	Stocks *service.StockService
	Hub    *ws.Hub
	Log    logrus.FieldLogger
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, location scoping, and role-based middleware as needed.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/locations/{location}", ws.Handler(d.Hub, cfg.JWTSecret))

	authHandler := handler.NewAuthHandler(d.Store, cfg.JWTSecret, d.Log)
	productHandler := handler.NewProductHandler(d.Store, d.Log)
	orderHandler := handler.NewOrderHandler(d.Orders, d.Log)
	historyHandler := handler.NewHistoryHandler(d.Store, d.Log, nil)
	reportsHandler := handler.NewReportsHandler(d.Store, d.Log, nil)
	stockHandler := handler.NewStockHandler(d.Store, d.Stocks, d.Log, nil)
	locationHandler := handler.NewLocationHandler(d.Store, d.Log)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		authHandler.RegisterRoutes(r)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			authHandler.RegisterProtectedRoutes(r)

			r.Route("/locations", func(r chi.Router) {
				locationHandler.RegisterRoutes(r)
				r.With(mw.RequireRole(enum.RoleOwner)).Group(locationHandler.RegisterOwnerRoutes)
			})

			r.Route("/products", func(r chi.Router) {
				productHandler.RegisterRoutes(r)
				r.With(mw.RequireRole(enum.RoleOwner)).Group(productHandler.RegisterOwnerRoutes)
			})

			// Location checked against the request body
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Location-scoped reads
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireLocationQuery)
				r.Route("/history", historyHandler.RegisterRoutes)
				r.Route("/reports", reportsHandler.RegisterRoutes)
			})

			r.Route("/stocks", func(r chi.Router) {
				r.With(mw.RequireLocationQuery).Group(stockHandler.RegisterRoutes)
				stockHandler.RegisterWriteRoutes(r)
				r.With(mw.RequireRole(enum.RoleOwner)).Group(stockHandler.RegisterOwnerRoutes)
			})
		})
	})

	return r
}
