package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/study-partner/config"
	_ "github.com/d60-Lab/study-partner/docs"
	"github.com/d60-Lab/study-partner/internal/api/handler"
	"github.com/d60-Lab/study-partner/internal/api/middleware"
	"github.com/d60-Lab/study-partner/internal/auth"
)

// Setup 组装中间件与路由
func Setup(cfg *config.Config, h *handler.Handler, verifier auth.Verifier) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(cfg.Server.AllowedOrigins),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger/"})),
	)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	insecure := cfg.Auth.InsecureBodyIdentity
	r.Use(middleware.Identity(verifier, insecure))
	authed := middleware.RequireIdentity(insecure)

	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	partners := r.Group("/partners")
	{
		partners.GET("", h.ListPartners)
		partners.GET("/top-rated", h.TopRated)
		partners.GET("/:id", h.GetPartner)
		// 匿名用户也可创建档案
		partners.POST("", h.CreatePartner)
		partners.PUT("/:id", authed, h.UpdatePartner)
		partners.DELETE("/:id", authed, h.DeletePartner)
	}

	requests := r.Group("/requests")
	{
		requests.POST("", authed, h.CreateRequest)
		if cfg.Server.DebugRoutes {
			requests.GET("/all", h.ListAllRequests)
		}
		requests.GET("/:email", authed, h.ListUserRequests)
		requests.PUT("/:id", authed, h.UpdateRequest)
		requests.DELETE("/:id", authed, h.DeleteRequest)
	}

	r.GET("/profile/:email", h.Profile)
	r.POST("/admin/reconcile", authed, h.Reconcile)

	return r
}
