// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/thinkshare/thinkshare/account"
	"github.com/thinkshare/thinkshare/articles"
	"github.com/thinkshare/thinkshare/assistant"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/handlers"
	"github.com/thinkshare/thinkshare/metrics"
	"github.com/thinkshare/thinkshare/middleware"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// Deps are the services the router wires into handlers. Gemini and OpenAI
// may be nil when the provider is not configured.
type Deps struct {
	DB       *sql.DB
	Config   cliparse.Config
	Issuer   *auth.TokenIssuer
	Users    middleware.UserLookup
	Accounts *account.Service
	Articles *articles.Service
	Gemini   assistant.Generator
	OpenAI   assistant.Generator
	Metrics  *metrics.Metrics
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Config, d.Metrics)
	articleHandler := handlers.NewArticleHandler(d.Articles, d.Config)
	assistantHandler := handlers.NewAssistantHandler(d.Gemini, d.OpenAI, d.Metrics)
	healthHandler := handlers.NewHealthHandler(d.DB)

	requireAuth := middleware.RequireAuth(d.Issuer, d.Users)
	limiter := middleware.NewRateLimiter(d.Config.AIRateLimit, d.Config.TrustedProxies)

	// route registers pattern under the API prefix with logging and metrics
	route := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(method+" "+APIPrefix+path, middleware.WithLogging(middleware.Instrument(d.Metrics, path, h)))
	}

	// Session
	route("POST", "/auth/register", authHandler.Register)
	route("POST", "/auth/login", authHandler.Login)
	route("POST", "/auth/refresh-token", authHandler.RefreshToken)
	route("POST", "/auth/logout", requireAuth(authHandler.Logout))
	route("GET", "/auth/me", requireAuth(authHandler.Me))
	route("PUT", "/auth/profile", requireAuth(authHandler.UpdateProfile))
	route("POST", "/auth/update-avatar", requireAuth(authHandler.UpdateAvatar))

	// Articles
	route("POST", "/article/create", requireAuth(articleHandler.Create))
	route("GET", "/article/all", articleHandler.ListAll)
	route("GET", "/article/user/{id}", articleHandler.ListByAuthor)
	route("GET", "/article/{id}", articleHandler.Get)
	route("PUT", "/article/{id}", requireAuth(articleHandler.Update))
	route("DELETE", "/article/{id}", requireAuth(articleHandler.Delete))
	route("POST", "/article/{id}/like", requireAuth(articleHandler.ToggleLike))
	route("POST", "/article/{id}/comment", requireAuth(articleHandler.AddComment))

	// Writing assistant (rate limited per client)
	route("POST", "/gemini/ask", limiter.Limit(assistantHandler.AskGemini))
	route("POST", "/ai/ask", limiter.Limit(assistantHandler.AskOpenAI))

	// Operations
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", healthHandler.Banner)

	return middleware.CORS(d.Config.CORSOrigin)(mux)
}
