package routes

import (
	"net/http"

	"github.com/zatekoja/businesstrust/backend/internal/api/handlers"
	"github.com/zatekoja/businesstrust/backend/internal/api/middleware"
	"github.com/zatekoja/businesstrust/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler    *handlers.AuthHandler
	ratingHandler  *handlers.RatingHandler
	commentHandler *handlers.CommentHandler
	companyHandler *handlers.CompanyHandler
	healthHandler  *handlers.HealthHandler

	authLimiter     *middleware.RateLimiter
	loaders         func(http.Handler) http.Handler
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// Options carries the optional middleware of a Router
type Options struct {
	// AuthLimiter throttles signup and login per client IP
	AuthLimiter *middleware.RateLimiter
	// Loaders attaches request-scoped batch loaders
	Loaders func(http.Handler) http.Handler
	// Cache caches public listings
	Cache          *middleware.CacheMiddleware
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	ratingHandler *handlers.RatingHandler,
	commentHandler *handlers.CommentHandler,
	companyHandler *handlers.CompanyHandler,
	healthHandler *handlers.HealthHandler,
	opts Options,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		authHandler:     authHandler,
		ratingHandler:   ratingHandler,
		commentHandler:  commentHandler,
		companyHandler:  companyHandler,
		healthHandler:   healthHandler,
		authLimiter:     opts.AuthLimiter,
		loaders:         opts.Loaders,
		cacheMiddleware: opts.Cache,
		allowedOrigins:  opts.AllowedOrigins,
		metrics:         opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Account endpoints
	r.mux.HandleFunc("POST /api/company/signup", r.throttle(r.authHandler.CompanySignup))
	r.mux.HandleFunc("POST /api/company/login", r.throttle(r.authHandler.CompanyLogin))
	r.mux.HandleFunc("POST /api/customer/signup", r.throttle(r.authHandler.CustomerSignup))
	r.mux.HandleFunc("POST /api/customer/login", r.throttle(r.authHandler.CustomerLogin))
	r.mux.HandleFunc("POST /api/logout", r.authHandler.Logout)

	// Public listings
	r.mux.HandleFunc("GET /api/companies", r.companyHandler.List)
	r.mux.HandleFunc("GET /api/company/search", r.companyHandler.Search)
	r.mux.HandleFunc("GET /api/company/top", r.companyHandler.Top)
	r.mux.HandleFunc("GET /api/company/recommendations", r.companyHandler.Recommendations)

	// Company self-service
	r.mux.HandleFunc("GET /api/company/me", r.companyHandler.Me)
	r.mux.HandleFunc("PATCH /api/company/me", r.companyHandler.UpdateMe)
	r.mux.HandleFunc("GET /api/company/me/feedback", r.companyHandler.Feedback)

	// Per-company endpoints
	r.mux.HandleFunc("GET /api/company/{id}", r.companyHandler.Get)
	r.mux.HandleFunc("GET /api/company/{id}/rate", r.ratingHandler.GetRating)
	r.mux.HandleFunc("POST /api/company/{id}/rate", r.ratingHandler.SubmitRating)
	r.mux.HandleFunc("GET /api/company/{id}/comments", r.commentHandler.ListComments)
	r.mux.HandleFunc("POST /api/company/{id}/comments", r.commentHandler.AddComment)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	if r.loaders != nil {
		handler = r.loaders(handler)
	}
	handler = middleware.Authenticate(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) throttle(h http.HandlerFunc) http.HandlerFunc {
	if r.authLimiter == nil {
		return h
	}
	return r.authLimiter.HandlerFunc(h)
}
