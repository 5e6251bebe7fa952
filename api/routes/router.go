package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abiagrow/connect-backend/api/controllers"
	"github.com/abiagrow/connect-backend/api/middleware"
	"github.com/abiagrow/connect-backend/internal/auth"
	"github.com/abiagrow/connect-backend/internal/cart"
	checkoutsvc "github.com/abiagrow/connect-backend/internal/checkout"
	"github.com/abiagrow/connect-backend/internal/categories"
	"github.com/abiagrow/connect-backend/internal/orders"
	"github.com/abiagrow/connect-backend/internal/products"
	"github.com/abiagrow/connect-backend/internal/registration"
	"github.com/abiagrow/connect-backend/internal/reviews"
	"github.com/abiagrow/connect-backend/internal/stores"
	"github.com/abiagrow/connect-backend/internal/users"
	"github.com/abiagrow/connect-backend/pkg/auth/session"
	"github.com/abiagrow/connect-backend/pkg/config"
	"github.com/abiagrow/connect-backend/pkg/db"
	"github.com/abiagrow/connect-backend/pkg/enums"
	"github.com/abiagrow/connect-backend/pkg/logger"
	"github.com/abiagrow/connect-backend/pkg/metrics"
	"github.com/abiagrow/connect-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Users    *users.Repository

	AuthService         auth.Service
	RegisterService     auth.RegisterService
	StoreService        stores.Service
	CategoryService     categories.Service
	ProductService      products.Service
	CartService         cart.Service
	CheckoutService     checkoutsvc.Service
	OrderService        orders.Service
	ReviewService       reviews.Service
	RegistrationService registration.Service

	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

// NewRouter assembles the full API surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(deps.HTTPMetrics))

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	authenticate := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	verifiedEmail := middleware.RequireVerifiedEmail(deps.Users, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.Login(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
				Post("/register", controllers.Register(deps.RegisterService, logg))
			r.Get("/verify-email", controllers.VerifyEmail(deps.AuthService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
				Post("/resend-verification", controllers.ResendVerification(deps.AuthService, logg))
		})

		// Public catalog browsing.
		r.Get("/categories", controllers.CategoryList(deps.CategoryService, logg))
		r.Get("/categories/{categorySlug}", controllers.CategoryBySlug(deps.CategoryService, logg))
		r.Get("/stores", controllers.StoreList(deps.StoreService, logg))
		r.Get("/stores/{storeSlug}", controllers.StoreBySlug(deps.StoreService, logg))
		r.Get("/stores/{storeSlug}/products/{productSlug}", controllers.ProductDetail(deps.ProductService, logg))
		r.Get("/products", controllers.ProductList(deps.ProductService, logg))
		r.Get("/products/{productID}/reviews", controllers.ReviewListForProduct(deps.ReviewService, logg))

		// Everything past here needs a verified account.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(verifiedEmail)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
				r.Put("/items/{itemID}", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.CartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderListMine(deps.OrderService, logg))
				r.Get("/{orderID}", controllers.OrderGet(deps.OrderService, logg))
				r.Get("/number/{orderNumber}", controllers.OrderByNumber(deps.OrderService, logg))
				r.Post("/{orderID}/cancel", controllers.OrderCancel(deps.OrderService, logg))
			})

			r.Post("/reviews", controllers.ReviewCreate(deps.ReviewService, logg))
			r.Delete("/reviews/{reviewID}", controllers.ReviewDelete(deps.ReviewService, logg))

			r.Route("/registration", func(r chi.Router) {
				r.Post("/farmers", controllers.FarmerRegister(deps.RegistrationService, logg))
				r.Get("/farmers/me", controllers.FarmerProfile(deps.RegistrationService, logg))
				r.Put("/farmers/me", controllers.FarmerUpdate(deps.RegistrationService, logg))
				r.Delete("/farmers/me", controllers.FarmerDeactivate(deps.RegistrationService, logg))
				r.Post("/buyers", controllers.BuyerRegister(deps.RegistrationService, logg))
				r.Get("/buyers/me", controllers.BuyerProfile(deps.RegistrationService, logg))
				r.Put("/buyers/me", controllers.BuyerUpdate(deps.RegistrationService, logg))
			})

			// Vendor surface. Ownership checks live in the services.
			r.Route("/vendor", func(r chi.Router) {
				r.Post("/stores", controllers.StoreCreate(deps.StoreService, logg))
				r.Get("/stores/me", controllers.StoreMine(deps.StoreService, logg))
				r.Put("/stores/{storeID}", controllers.StoreUpdate(deps.StoreService, logg))

				r.Post("/products", controllers.ProductCreate(deps.ProductService, logg))
				r.Put("/products/{productID}", controllers.ProductUpdate(deps.ProductService, logg))
				r.Delete("/products/{productID}", controllers.ProductDelete(deps.ProductService, logg))

				r.Get("/orders", controllers.OrderListStore(deps.OrderService, logg))
				r.Post("/orders/{orderID}/ship", controllers.OrderShip(deps.OrderService, logg))
				r.Post("/orders/{orderID}/deliver", controllers.OrderDeliver(deps.OrderService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Post("/stores/{storeID}/verify", controllers.StoreVerify(deps.StoreService, logg))
		r.Post("/categories", controllers.CategoryCreate(deps.CategoryService, logg))
		r.Put("/categories/{categoryID}", controllers.CategoryUpdate(deps.CategoryService, logg))
		r.Post("/orders/{orderID}/mark-paid", controllers.OrderMarkPaid(deps.OrderService, logg))
		r.Post("/orders/bulk-cancel", controllers.OrderBulkCancel(deps.OrderService, logg))
		r.Put("/reviews/{reviewID}/approval", controllers.ReviewSetApproval(deps.ReviewService, logg))
	})

	return r
}

func readinessChecks(deps Deps) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["database"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
