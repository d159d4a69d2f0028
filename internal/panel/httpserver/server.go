package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/securecookie"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/auth"
	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/session"
	"github.com/MKdir98/vendor-panel/public"
)

// Config holds runtime options for the vendor panel HTTP server.
type Config struct {
	Address       string
	BasePath      string
	LoginPath     string
	Environment   string
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Catalog       *i18n.Catalog
	Sessions      custommw.SessionStore
	Authenticator custommw.Authenticator
	Auth          auth.Service
	UI            ui.Dependencies

	CookieSecure   bool
	CSRFCookieName string
	// LoginRate caps sign-in and registration posts per client IP per minute.
	LoginRate      int
	RequestTimeout time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewHandler(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewHandler builds the router. Missing dependencies fall back to in-memory
// development implementations.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestMiddleware(logger, cfg.Metrics))
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
		IsDevelopment:      !strings.EqualFold(cfg.Environment, "production"),
	}).Handler)
	router.Use(chimw.Timeout(timeout))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog, err = i18n.Load(i18n.Persian)
		if err != nil {
			logger.Fatal("load message catalog", zap.Error(err))
		}
	}
	sessions := cfg.Sessions
	if sessions == nil {
		manager, err := session.NewManager(session.Config{
			HashKey:      securecookie.GenerateRandomKey(32),
			CookieSecure: cfg.CookieSecure,
		})
		if err != nil {
			logger.Fatal("session manager", zap.Error(err))
		}
		sessions = manager
	}
	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.NewTokenAuthenticator("seller", time.Now)
	}
	authService := cfg.Auth
	if authService == nil {
		authService = auth.NewStaticService(nil, nil)
	}

	basePath := custommw.NormalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)
	handlers := ui.NewHandlers(cfg.UI)

	mountPanelRoutes(router, basePath, routeOptions{
		Handlers:    handlers,
		Auth:        newAuthHandlers(authService, authenticator, handlers, basePath, loginPath),
		Authn:       authenticator,
		LoginPath:   loginPath,
		Catalog:     catalog,
		Sessions:    sessions,
		Environment: cfg.Environment,
		LoginRate:   cfg.LoginRate,
		Secure:      cfg.CookieSecure,
		CSRF: custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			CookiePath: basePath,
			Secure:     cfg.CookieSecure,
		},
	})
	router.NotFound(ui.NotFound)

	return router
}

type routeOptions struct {
	Handlers    *ui.Handlers
	Auth        *authHandlers
	Authn       custommw.Authenticator
	LoginPath   string
	Catalog     *i18n.Catalog
	Sessions    custommw.SessionStore
	Environment string
	LoginRate   int
	Secure      bool
	CSRF        custommw.CSRFConfig
}

func mountPanelRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	if base != "/" {
		router.Get(base, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, base+"/", http.StatusMovedPermanently)
		})
	}

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.Locale(opts.Catalog, opts.Secure))
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.CSRF(opts.CSRF))
		r.NotFound(ui.NotFound)

		limit := loginLimiter(opts.LoginRate)

		r.Get("/login", opts.Auth.LoginForm)
		r.With(limit).Post("/login", opts.Auth.LoginSubmit)
		r.Get("/register", opts.Auth.RegisterForm)
		r.With(limit).Post("/register", opts.Auth.RegisterSubmit)
		r.Post("/logout", opts.Auth.Logout)
		r.Get("/terms", h.Terms)

		r.Group(func(r chi.Router) {
			r.Use(custommw.NoStore())
			r.Use(custommw.Auth(opts.Authn, opts.LoginPath))

			r.Get("/", h.Dashboard)

			r.Get("/orders/collection", h.CollectionPage)
			r.Post("/orders/collection/toggle", h.CollectionToggle)
			r.Post("/orders/collection/toggle-all", h.CollectionToggleAll)
			r.Post("/orders/collection/request", h.CollectionRequest)
			r.Post("/orders/collection/select-more", h.CollectionSelectMore)

			r.Get("/orders/{orderID}", h.OrderDetail)
			r.Route("/orders/{orderID}/fulfillments/{fulfillmentID}", func(r chi.Router) {
				r.Get("/label", h.FulfillmentLabel)
				r.Post("/cancel", h.FulfillmentCancel)
				r.Post("/ship", h.FulfillmentShip)
				r.Post("/deliver", h.FulfillmentDeliver)
			})

			r.Get("/locations", h.LocationsList)
			r.Get("/locations/new", h.LocationNew)
			r.Post("/locations", h.LocationCreate)
			r.With(custommw.RequireHTMX()).Post("/locations/cities", h.LocationCities)
			r.Get("/locations/{locationID}/edit", h.LocationEdit)
			r.Post("/locations/{locationID}", h.LocationUpdate)
			r.Get("/locations/{locationID}/service-zones", h.ServiceZones)
			r.Route("/locations/{locationID}/service-zones/{zoneID}/shipping-options", func(r chi.Router) {
				r.Get("/new", h.ShippingOptionNew)
				r.Post("/new", h.ShippingOptionCreate)
			})

			r.Get("/categories/new", h.CategoryNew)
			r.Post("/categories", h.CategoryCreate)
			r.Get("/categories/{categoryID}", h.CategoryDetail)
			r.Post("/categories/{categoryID}/image", h.CategoryImage)
		})
	})
}

func loginLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			ui.RenderError(w, r, http.StatusTooManyRequests, "errors.tooManyRequests")
		}),
	)
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}
