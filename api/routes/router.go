package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/pricing"
	products "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/internal/variants"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

// Services groups the domain services the router exposes.
type Services struct {
	Products products.Service
	Pricing  pricing.Service
	Variants variants.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	// a nil *redis.Client must not reach the middleware as a non-nil interface
	var (
		idempotencyStore redis.IdempotencyStore
		limiter          redis.RateLimiter
		cachePinger      controllers.Pinger
	)
	if redisClient != nil {
		idempotencyStore = redisClient
		limiter = redisClient
		cachePinger = redisClient
	}

	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	generationPolicy := middleware.NewRateLimitPolicy(
		"variant_generation",
		cfg.Catalog.GenerationRateWindow,
		cfg.Catalog.GenerationRateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		writer := middleware.RequireWriter(logg)

		r.Route("/products", func(r chi.Router) {
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(writer)
				r.Post("/", controllers.CreateProduct(svcs.Products, logg))
				r.Put("/{productId}", controllers.UpdateProduct(svcs.Products, logg))
				r.With(middleware.RequireRole(enums.CatalogRoleAdmin, logg)).
					Delete("/{productId}", controllers.DeleteProduct(svcs.Products, logg))
			})
		})

		r.Route("/product-pricing", func(r chi.Router) {
			r.Get("/units", controllers.PricingUnits(svcs.Pricing, logg))
			r.Get("/product/{productId}", controllers.PricingListByProduct(svcs.Pricing, logg))
			r.Get("/product/{productId}/summary", controllers.PricingSummary(svcs.Pricing, logg))
			r.Get("/product/{productId}/has-tiers", controllers.PricingHasTiers(svcs.Pricing, logg))
			r.Get("/product/{productId}/export", controllers.PricingExport(svcs.Pricing, logg))
			r.Get("/variant/{variantId}", controllers.PricingListByVariant(svcs.Pricing, logg))
			r.Get("/calculate/{productId}/{quantity}", controllers.PricingCalculate(svcs.Pricing, logg))
			r.Get("/calculate/{productId}/{quantity}/{variantId}", controllers.PricingCalculate(svcs.Pricing, logg))
			r.Get("/resolve/{productId}/{quantity}", controllers.PricingResolveTier(svcs.Pricing, logg))
			r.Get("/{tierId}", controllers.PricingGetTier(svcs.Pricing, logg))

			r.Group(func(r chi.Router) {
				r.Use(writer)
				r.Post("/", controllers.PricingCreateTier(svcs.Pricing, logg))
				r.Post("/bulk", controllers.PricingBulkReplace(svcs.Pricing, logg))
				r.Post("/import", controllers.PricingImport(svcs.Pricing, logg))
				r.Put("/{tierId}", controllers.PricingUpdateTier(svcs.Pricing, logg))
				r.Delete("/{tierId}", controllers.PricingDeleteTier(svcs.Pricing, logg))
			})
		})

		r.Route("/product-variants", func(r chi.Router) {
			r.Get("/product/{productId}", controllers.VariantsForProduct(svcs.Variants, logg))
			r.Get("/product/{productId}/types", controllers.VariantListTypes(svcs.Variants, logg))
			r.Get("/product/{productId}/combinations", controllers.VariantListCombinations(svcs.Variants, logg))
			r.Get("/types/{typeId}", controllers.VariantGetType(svcs.Variants, logg))
			r.Get("/combinations/{combinationId}", controllers.VariantGetCombination(svcs.Variants, logg))
			r.Get("/combinations/sku/{sku}", controllers.VariantGetCombinationBySKU(svcs.Variants, logg))
			r.Get("/sku-exists", controllers.VariantCheckSKU(svcs.Variants, logg))
			r.Post("/variant-name", controllers.VariantGenerateName(svcs.Variants, logg))

			r.Group(func(r chi.Router) {
				r.Use(writer)
				r.Post("/types", controllers.VariantCreateType(svcs.Variants, logg))
				r.Put("/types/{typeId}", controllers.VariantUpdateType(svcs.Variants, logg))
				r.Delete("/types/{typeId}", controllers.VariantDeleteType(svcs.Variants, logg))

				r.Post("/values", controllers.VariantCreateValue(svcs.Variants, logg))
				r.Put("/values/{valueId}", controllers.VariantUpdateValue(svcs.Variants, logg))
				r.Delete("/values/{valueId}", controllers.VariantDeleteValue(svcs.Variants, logg))

				r.Post("/combinations", controllers.VariantCreateCombination(svcs.Variants, logg))
				r.Put("/combinations/{combinationId}", controllers.VariantUpdateCombination(svcs.Variants, logg))
				r.Delete("/combinations/{combinationId}", controllers.VariantDeleteCombination(svcs.Variants, logg))

				r.With(middleware.RateLimit(generationPolicy, limiter, logg)).
					Post("/bulk-create", controllers.VariantBulkCreate(svcs.Variants, logg))
			})
		})
	})

	return r
}
