package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/wagglex2/waggle/api/waggle" // Swagger docs
	"github.com/wagglex2/waggle/internal/auth/metrics"
	"github.com/wagglex2/waggle/internal/auth/service"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/pkg/httpx"
	"github.com/wagglex2/waggle/pkg/jwtx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.KindVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	SessionService   *service.SessionService
	BootstrapService *service.BootstrapService

	// Cookies sets the attributes of the credential cookies.
	Cookies httpx.CookieOptions

	// Readiness lists the dependencies probed by /readyz.
	Readiness map[string]store.Pinger

	// Metrics and Gatherer are optional; without them /metrics is not
	// served and gate results are not counted.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// Limits for the rate-limited routes. Zero values use the defaults.
	StrictLimit   httpx.RateLimitConfig
	ModerateLimit httpx.RateLimitConfig

	// Clock computes cookie lifetimes. It should be the clock the codec
	// issues with.
	Clock func() time.Time
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.KindVerifier,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:           http.NewServeMux(),
		keys:          keys,
		verifier:      verifier,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		Cookies:       httpx.CookieOptions{Secure: true},
		StrictLimit:   httpx.StrictLimit,
		ModerateLimit: httpx.ModerateLimit,
		Clock:         time.Now,
	}
}

// ApplyRoutes registers every route and fixes the global middleware chain.
// Call it once, after the exported fields are set.
func (r *Router) ApplyRoutes() {
	var authnOpts []httpx.AuthnOption
	if r.Metrics != nil {
		authnOpts = append(authnOpts, httpx.WithGateObserver(r.Metrics.RecordGate))
	}

	// The gate runs for every route; it never rejects, so public routes
	// are unaffected by bad credentials.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authenticate(r.verifier, authnOpts...),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Waggle Authentication API
//	@version		0.1.0
//	@description	Session authentication for waggle: username/password login, refresh credential rotation and logout.
//	@description
//	@description	Access credentials are JWTs accepted in the Authorization header or the access_token cookie. The refresh credential only travels in the HttpOnly refresh_token cookie.
//
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Sessions: r.SessionService,
		Cookies:  r.Cookies,
		Now:      r.Clock,
	}

	// Login is limited per IP and per username to slow down guessing.
	r.Mux.Handle("POST /api/v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("POST /api/v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RequireAuthenticated,
			httpx.RateLimitBySubject(r.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/v1/auth/username-check",
		httpx.Chain(http.HandlerFunc(h.HandleUsernameCheck),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET /api/v1/users/me",
		httpx.Chain(http.HandlerFunc(HandleMe),
			httpx.RequireAuthenticated,
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /api/v1/bootstrap",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Probes are polled frequently by orchestrators.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.Readiness, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", metrics.Handler(r.Gatherer))
	}
}
