package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/pkg/health"
	"github.com/vitalcosmeticos/catalog/pkg/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Products      *ProductHandler
	Categories    *CategoryHandler
	Favorites     *FavoriteHandler
	Contacts      *ContactHandler
	Folders       *FolderHandler
	Notifications *NotificationHandler
	ImageProxy    *ImageProxyHandler
	Visitors      *VisitorHandler
	Dashboard     *DashboardHandler
	Auth          *AuthHandler
}

type RouterConfig struct {
	ServiceName       string
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
	Tokens            middleware.TokenValidator
	// ContactLimiter guards the public contact form, ExportLimiter the
	// folder export endpoint.
	ContactLimiter *middleware.RateLimiter
	ExportLimiter  *middleware.RateLimiter
	// CatalogMaxAge is the Cache-Control max-age for public catalog reads.
	CatalogMaxAge int
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(h Handlers, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.OptionalAuth(cfg.Tokens))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			r.Get("/products", h.Products.ListProducts)
			r.Get("/products/{id}", h.Products.GetProduct)
			r.Get("/products/{id}/inquiry", h.Products.Inquiry)
			r.Get("/categories", h.Categories.ListCategories)
			r.Get("/categories/{id}", h.Categories.GetCategory)
		})
		r.Post("/products/{id}/view", h.Products.RegisterView)
		r.Get("/proxy-image/*", h.ImageProxy.ServeImage)

		r.With(cfg.ContactLimiter.Handler).Post("/contacts", h.Contacts.CreateContact)

		r.Route("/visitor", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/promo", h.Visitors.GetPromo)
			r.Post("/promo", h.Visitors.MarkPromo)
		})

		// Favorites answer LOGIN_REQUIRED themselves for anonymous visitors.
		r.Route("/favorites", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/", h.Favorites.ListFavorites)
			r.Get("/ids", h.Favorites.ListFavoriteIDs)
			r.Get("/{productId}", h.Favorites.GetFavorite)
			r.Post("/{productId}", h.Favorites.AddFavorite)
			r.Delete("/{productId}", h.Favorites.RemoveFavorite)
			r.Post("/{productId}/toggle", h.Favorites.ToggleFavorite)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(middleware.Auth(cfg.Tokens)).Get("/me", h.Auth.Me)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Tokens))
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Use(middleware.NoStore)

			r.Get("/dashboard", h.Dashboard.GetStats)

			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.Products.CreateProduct)
				r.Put("/{id}", h.Products.UpdateProduct)
				r.Delete("/{id}", h.Products.DeleteProduct)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", h.Categories.CreateCategory)
				r.Put("/{id}", h.Categories.UpdateCategory)
				r.Delete("/{id}", h.Categories.DeleteCategory)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", h.Contacts.ListContacts)
				r.Get("/{id}", h.Contacts.GetContact)
				r.Patch("/{id}/status", h.Contacts.UpdateContactStatus)
				r.Delete("/{id}", h.Contacts.DeleteContact)
				r.Get("/{id}/reply", h.Contacts.ReplyLink)
			})

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", h.Folders.ListFolders)
				r.Post("/", h.Folders.CreateFolder)
				r.Get("/{id}", h.Folders.GetFolder)
				r.Put("/{id}", h.Folders.UpdateFolder)
				r.Delete("/{id}", h.Folders.DeleteFolder)
				r.With(cfg.ExportLimiter.Handler).Get("/{id}/export", h.Folders.ExportFolder)
				r.Get("/{id}/share", h.Folders.ShareFolder)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.GetSnapshot)
				r.Get("/stream", h.Notifications.Stream)
				r.Post("/read", h.Notifications.MarkRead)
				r.Delete("/toast", h.Notifications.ClearToast)
			})
		})
	})

	return r
}
