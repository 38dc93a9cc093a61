package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"stockmaster/internal/api/operation"
	"stockmaster/internal/api/product"
	"stockmaster/internal/api/report"
	"stockmaster/internal/api/stock"
	"stockmaster/internal/api/user"
	"stockmaster/internal/api/warehouse"
	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/cache"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/metrics"
	"stockmaster/internal/pkg/middleware"
)

// RateLimit configura o limitador de requisições. Sem Cache, o limitador fica desligado.
type RateLimit struct {
	Cache       cache.Client
	MaxRequests int
	Period      time.Duration
}

// Params agrupa as dependências do roteador, já inicializadas por injeção de dependências.
type Params struct {
	Logger           logger.Logger
	Metrics          *metrics.Metrics
	TokenService     middleware.TokenService
	RateLimit        RateLimit
	OperationHandler *operation.Handler
	StockHandler     *stock.Handler
	ReportHandler    *report.Handler
	ProductHandler   *product.Handler
	WarehouseHandler *warehouse.Handler
	UserHandler      *user.Handler
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(p.Metrics.Middleware)
	if p.RateLimit.Cache != nil && p.RateLimit.MaxRequests > 0 {
		r.Use(middleware.RateLimiter(p.RateLimit.Cache, p.RateLimit.MaxRequests, p.RateLimit.Period, p.Logger))
	}

	// --- Rotas de infraestrutura ---
	r.Get("/ping", PingHandler)
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/v1", func(r chi.Router) {
		// Autenticação (pública)
		r.Post("/auth/register", p.UserHandler.RegisterUserHandler)
		r.Post("/auth/login", p.UserHandler.LoginUserHandler)
		r.Post("/auth/request-otp", p.UserHandler.RequestOTPHandler)
		r.Post("/auth/reset-password", p.UserHandler.ResetPasswordHandler)

		// Demais rotas exigem JWT
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(p.TokenService))

			r.Get("/auth/me", p.UserHandler.ProfileHandler)

			r.Get("/operations", p.OperationHandler.ListOperationsHandler)
			r.Get("/operations/{id}", p.OperationHandler.GetOperationHandler)
			r.Get("/stock/{productID}/{locationID}", p.StockHandler.GetStockLevelHandler)
			r.Get("/movements", p.StockHandler.ListMovementsHandler)

			r.Get("/dashboard/kpis", p.ReportHandler.KPIsHandler)

			r.Get("/products", p.ProductHandler.ListProductsHandler)
			r.Get("/products/{id}", p.ProductHandler.GetProductByIDHandler)
			r.Get("/categories", p.ProductHandler.ListCategoriesHandler)
			r.Get("/warehouses", p.WarehouseHandler.GetAllWarehousesHandler)
			r.Get("/locations", p.WarehouseHandler.GetAllLocationsHandler)
			r.Get("/locations/{id}", p.WarehouseHandler.GetLocationByIDHandler)

			// Escritas exigem um papel conhecido no token
			r.Group(func(r chi.Router) {
				r.Use(middleware.PermissionMiddleware(domain.RoleAdmin, domain.RoleUser))
				r.Post("/operations", p.OperationHandler.CreateOperationHandler)
				r.Post("/operations/{id}/validate", p.StockHandler.ValidateOperationHandler)
				r.Post("/stock/initial", p.StockHandler.SeedInitialStockHandler)
				r.Post("/products", p.ProductHandler.CreateProductHandler)
			})
		})
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
