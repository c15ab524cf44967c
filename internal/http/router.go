package http

import (
	"log/slog"

	"github.com/geocoder89/reviewhub/internal/config"
	"github.com/geocoder89/reviewhub/internal/http/handlers"
	"github.com/geocoder89/reviewhub/internal/http/middlewares"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs; main builds it once at startup.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Accounts handlers.AccountService
	Reviews  handlers.ReviewSubmitter
	Catalog  handlers.ReviewLister
	Tokens   middlewares.TokenVerifier
	Checks   map[string]handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("reviewhub"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.Config.CORSOrigins))

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Routes
	authHandler := handlers.NewAuthHandler(d.Accounts)
	reviewsHandler := handlers.NewReviewsHandler(d.Reviews, d.Catalog)
	authMw := middlewares.NewAuthMiddleware(d.Tokens)

	r.POST("/signup", middlewares.RequireJSON(), authHandler.SignUp)
	r.POST("/signin", middlewares.RequireJSON(), authHandler.SignIn)

	maxUpload := d.Config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 200 << 20
	}
	r.POST("/upload", authMw.RequireAuth(), middlewares.LimitUploadBody(maxUpload), reviewsHandler.Upload)
	r.GET("/display", reviewsHandler.Display)

	return r
}
