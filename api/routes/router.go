package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pizzaro/pizzaro-backend/api/controllers"
	"github.com/pizzaro/pizzaro-backend/api/middleware"
	authsvc "github.com/pizzaro/pizzaro-backend/internal/auth"
	cartsvc "github.com/pizzaro/pizzaro-backend/internal/cart"
	checkoutsvc "github.com/pizzaro/pizzaro-backend/internal/checkout"
	menusvc "github.com/pizzaro/pizzaro-backend/internal/menu"
	ordersvc "github.com/pizzaro/pizzaro-backend/internal/orders"
	userssvc "github.com/pizzaro/pizzaro-backend/internal/users"
	"github.com/pizzaro/pizzaro-backend/pkg/auth/session"
	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/db"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/metrics"
	"github.com/pizzaro/pizzaro-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.AccessSessionChecker

	Auth     authsvc.Service
	Carts    *cartsvc.Manager
	Checkout checkoutsvc.Service
	Menu     menusvc.Service
	Orders   ordersvc.Service
	Users    userssvc.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/otp/request", controllers.AuthRequestOTP(p.Auth, logg))
		r.Post("/otp/verify", controllers.AuthVerifyOTP(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	r.Post("/api/admin/v1/auth/login", controllers.AdminAuthLogin(p.Auth, logg))

	r.Get("/api/v1/menu", controllers.Menu(p.Menu, logg))

	r.Get("/api/v1/orders/{orderID}", controllers.OrderTrack(p.Orders, logg))

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.CartToken(logg))
		r.Get("/", controllers.CartGet(p.Carts, logg))
		r.Delete("/", controllers.CartClear(p.Carts, logg))
		r.Post("/items", controllers.CartAddItem(p.Carts, logg))
		r.Patch("/items/{itemID}", controllers.CartUpdateItem(p.Carts, logg))
		r.Delete("/items/{itemID}", controllers.CartRemoveItem(p.Carts, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.CartToken(logg))
		r.Use(middleware.OptionalAuth(cfg.JWT, p.Sessions, logg))
		r.Post("/", controllers.Checkout(p.Checkout, logg))
	})

	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Get("/", controllers.ProfileGet(p.Users, logg))
		r.Patch("/", controllers.ProfileUpdate(p.Users, logg))
		r.Delete("/", controllers.ProfileDelete(p.Users, logg))
		r.Get("/orders", controllers.MyOrders(p.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(p.Orders, logg))
			r.Get("/{orderID}", controllers.AdminOrderGet(p.Orders, logg))
			r.Patch("/{orderID}/status", controllers.AdminOrderUpdateStatus(p.Orders, logg))
		})

		r.Route("/menu", func(r chi.Router) {
			r.Post("/batch", controllers.MenuBatchSave(p.Menu, logg))
			r.Post("/sections", controllers.MenuSectionCreate(p.Menu, logg))
			r.Put("/sections/{sectionID}", controllers.MenuSectionUpdate(p.Menu, logg))
			r.Delete("/sections/{sectionID}", controllers.MenuSectionDelete(p.Menu, logg))
			r.Post("/products", controllers.MenuProductCreate(p.Menu, logg))
			r.Put("/products/{productID}", controllers.MenuProductUpdate(p.Menu, logg))
			r.Delete("/products/{productID}", controllers.MenuProductDelete(p.Menu, logg))
		})
	})

	return r
}
