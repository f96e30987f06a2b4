package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organimart/organimart-backend/api/controllers"
	"github.com/organimart/organimart-backend/api/middleware"
	"github.com/organimart/organimart-backend/internal/auth"
	"github.com/organimart/organimart-backend/internal/cart"
	"github.com/organimart/organimart-backend/internal/categories"
	"github.com/organimart/organimart-backend/internal/certifications"
	"github.com/organimart/organimart-backend/internal/notifications"
	"github.com/organimart/organimart-backend/internal/orders"
	"github.com/organimart/organimart-backend/internal/products"
	"github.com/organimart/organimart-backend/internal/profiles"
	"github.com/organimart/organimart-backend/internal/rfq"
	"github.com/organimart/organimart-backend/internal/users"
	"github.com/organimart/organimart-backend/pkg/config"
	"github.com/organimart/organimart-backend/pkg/enums"
	"github.com/organimart/organimart-backend/pkg/logger"
	"github.com/organimart/organimart-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    controllers.Pinger
	RedisClient *redis.Client

	UserLoader middleware.UserLoader

	AuthService     auth.Service
	RegisterService auth.RegisterService

	UsersService          *users.Service
	ProfilesService       *profiles.Service
	CategoriesService     *categories.Service
	ProductsService       *products.Service
	CartService           *cart.Service
	OrdersService         *orders.Service
	RFQService            *rfq.Service
	CertificationsService *certifications.Service
	NotificationsService  notifications.Service
}

// NewRouter builds the full chi route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	authMW := middleware.Auth(cfg.JWT, p.UserLoader, logg)
	buyerOnly := middleware.RequireRole(logg, enums.UserRoleBuyer)
	sellerOnly := middleware.RequireRole(logg, enums.UserRoleSeller)
	adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyDeps(p.DBPinger, p.RedisClient)))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.RedisClient, logg)).
			Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(authMW).Get("/me", controllers.AuthMe(p.AuthService, logg))
		r.With(authMW).Put("/password", controllers.AuthChangePassword(p.AuthService, logg))
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(p.CategoriesService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.BrowseProducts(p.ProductsService, logg))
		r.Get("/featured", controllers.FeaturedProducts(p.ProductsService, logg))
		r.Get("/{id}", controllers.GetProduct(p.ProductsService, logg))
		r.Get("/{id}/certifications", controllers.ProductCertifications(p.CertificationsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authMW, sellerOnly)
			r.Get("/seller/mine", controllers.ListMyProducts(p.ProductsService, logg))
			r.Post("/", controllers.CreateProduct(p.ProductsService, logg))
			r.Put("/{id}", controllers.UpdateProduct(p.ProductsService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(p.ProductsService, logg))
			r.Put("/{id}/stock", controllers.UpdateProductStock(p.ProductsService, logg))
		})
	})

	r.Route("/api/v1/profiles", func(r chi.Router) {
		r.Use(authMW)
		r.With(buyerOnly).Get("/buyer", controllers.GetBuyerProfile(p.ProfilesService, logg))
		r.With(buyerOnly).Put("/buyer", controllers.UpdateBuyerProfile(p.ProfilesService, logg))
		r.With(sellerOnly).Get("/seller", controllers.GetSellerProfile(p.ProfilesService, logg))
		r.With(sellerOnly).Put("/seller", controllers.UpdateSellerProfile(p.ProfilesService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(authMW, buyerOnly)
		r.Get("/", controllers.GetCart(p.CartService, logg))
		r.Post("/", controllers.AddCartItem(p.CartService, logg))
		r.Put("/{itemId}", controllers.UpdateCartItem(p.CartService, logg))
		r.Delete("/{itemId}", controllers.RemoveCartItem(p.CartService, logg))
		r.Delete("/", controllers.ClearCart(p.CartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(authMW)
		r.With(buyerOnly).Post("/", controllers.CreateOrder(p.OrdersService, logg))
		r.With(buyerOnly).Get("/", controllers.ListMyOrders(p.OrdersService, logg))
		r.With(sellerOnly).Get("/seller", controllers.ListSellerOrders(p.OrdersService, logg))
		r.Get("/{id}", controllers.GetOrder(p.OrdersService, logg))
		r.With(buyerOnly).Put("/{id}/cancel", controllers.CancelOrder(p.OrdersService, logg))
		r.With(sellerOnly).Put("/{id}/status", controllers.UpdateOrderStatus(p.OrdersService, logg))
	})

	r.Route("/api/v1/rfq", func(r chi.Router) {
		r.Use(authMW)
		r.With(buyerOnly).Post("/", controllers.CreateRFQ(p.RFQService, logg))
		r.Get("/", controllers.ListOpenRFQs(p.RFQService, logg))
		r.With(buyerOnly).Get("/mine", controllers.ListMyRFQs(p.RFQService, logg))

		r.Route("/quotes", func(r chi.Router) {
			r.With(sellerOnly).Get("/mine", controllers.ListMyQuotes(p.RFQService, logg))
			r.Get("/{id}", controllers.GetQuote(p.RFQService, logg))
			r.With(sellerOnly).Put("/{id}", controllers.UpdateQuote(p.RFQService, logg))
			r.With(sellerOnly).Delete("/{id}", controllers.DeleteQuote(p.RFQService, logg))
		})

		r.Get("/{id}", controllers.GetRFQ(p.RFQService, logg))
		r.With(buyerOnly).Put("/{id}", controllers.UpdateRFQ(p.RFQService, logg))
		r.With(buyerOnly).Delete("/{id}", controllers.DeleteRFQ(p.RFQService, logg))
		r.With(buyerOnly).Put("/{id}/close", controllers.CloseRFQ(p.RFQService, logg))
		r.With(sellerOnly).Post("/{id}/quotes", controllers.SubmitQuote(p.RFQService, logg))
		r.Get("/{id}/quotes", controllers.ListRFQQuotes(p.RFQService, logg))
	})

	r.Route("/api/v1/certifications", func(r chi.Router) {
		r.Use(authMW)
		r.With(sellerOnly).Post("/", controllers.CreateCertification(p.CertificationsService, logg))
		r.With(sellerOnly).Get("/", controllers.ListMyCertifications(p.CertificationsService, logg))
		r.Get("/{id}", controllers.GetCertification(p.CertificationsService, logg))
		r.With(sellerOnly).Put("/{id}", controllers.UpdateCertification(p.CertificationsService, logg))
		r.With(sellerOnly).Delete("/{id}", controllers.DeleteCertification(p.CertificationsService, logg))
		r.With(sellerOnly).Post("/{id}/products", controllers.LinkCertificationProduct(p.CertificationsService, logg))
		r.With(sellerOnly).Delete("/{id}/products/{productId}", controllers.UnlinkCertificationProduct(p.CertificationsService, logg))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", controllers.ListNotifications(p.NotificationsService, logg))
		r.Get("/unread-count", controllers.UnreadNotificationCount(p.NotificationsService, logg))
		r.Put("/{id}/read", controllers.MarkNotificationRead(p.NotificationsService, logg))
		r.Put("/read-all", controllers.MarkAllNotificationsRead(p.NotificationsService, logg))
		r.Delete("/{id}", controllers.DeleteNotification(p.NotificationsService, logg))
		r.Delete("/read", controllers.DeleteReadNotifications(p.NotificationsService, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(authMW, adminOnly)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(p.UsersService, logg))
			r.Get("/pending-sellers", controllers.AdminListPendingSellers(p.UsersService, logg))
			r.Get("/{id}", controllers.AdminGetUser(p.UsersService, logg))
			r.Put("/{id}/status", controllers.AdminUpdateUserStatus(p.UsersService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CreateCategory(p.CategoriesService, logg))
			r.Put("/{id}", controllers.UpdateCategory(p.CategoriesService, logg))
			r.Delete("/{id}", controllers.DeleteCategory(p.CategoriesService, logg))
		})

		r.Route("/certifications", func(r chi.Router) {
			r.Get("/", controllers.AdminCertificationQueue(p.CertificationsService, logg))
			r.Put("/bulk-verify", controllers.AdminBulkReviewCertifications(p.CertificationsService, logg))
			r.Put("/{id}/verify", controllers.AdminReviewCertification(p.CertificationsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/", controllers.AdminSendNotification(p.NotificationsService, logg))
			r.Post("/bulk", controllers.AdminBulkSendNotification(p.NotificationsService, logg))
		})
	})

	return r
}
