package http

import (
	"context"
	"path/filepath"
	"time"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/discovery/etcd"
	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/mq/kafka"
	redisrepo "go-studioadmin/internal/repository/redis"
	"go-studioadmin/internal/security/jwt"
	handlerset "go-studioadmin/internal/server/http/handler"
	"go-studioadmin/internal/server/http/middleware"
	obs "go-studioadmin/internal/server/http/middleware/observability"
	sec "go-studioadmin/internal/server/http/middleware/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Infra carries the clients the router needs for middleware and health.
type Infra struct {
	Config   *config.Config
	Logger   *logging.Logger
	JWT      *jwt.Manager
	DB       *gorm.DB
	Redis    *redisrepo.Client
	Producer *kafka.Producer
	Access   *kafka.AccessAsyncSender
	Etcd     *etcd.Client
}

// NewRouter only wires groups and middleware; behaviour lives in the handlers.
func NewRouter(in Infra, h *handlerset.HandlerSet) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ConfigInjector(in.Config), middleware.Recovery(), middleware.CORS(in.Config.HTTP.AllowedOrigins),
		obs.TraceMiddleware(), obs.LoggerContextMiddleware(in.Logger), obs.Metrics(), obs.AccessLog(in.Logger))
	switch {
	case in.Access != nil:
		r.Use(obs.AccessLogKafkaAsync(in.Access))
	case in.Producer != nil:
		r.Use(obs.AccessLogKafka(in.Producer))
	}

	hc := NewHealthChecker(in.DB, in.Redis, in.Producer, in.Etcd)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.Invalidate()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if dir := in.Config.Upload.Dir; dir != "" {
		r.Static("/"+filepath.Base(dir), dir)
	}

	auth := sec.NewAuth(in.JWT, in.Logger, in.Redis, in.Config.Redis.JTIPrefix)
	staff := sec.RequireRole(model.RoleAdmin, model.RoleManager)

	// Public endpoints.
	r.POST("/api/trial", h.Applications.Trial)
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", auth.Handler(), h.Auth.Logout)
		api.GET("/auth/me", auth.Handler(), obs.UserContextMiddleware(in.Logger), h.Auth.Me)
		api.POST("/support/messages", sec.Bridge(in.Config.Support.BridgeSecret), h.Support.Inbound)
	}

	// Browsers cannot set headers on a websocket upgrade, so the push channel
	// also accepts ?token=.
	r.GET("/api/v1/admin/realtime", auth.WithQueryToken().Handler(), staff, h.Realtime.Connect)

	admin := r.Group("/api/v1/admin", auth.Handler(), staff, obs.UserContextMiddleware(in.Logger), obs.OperationLog(in.Producer))
	{
		for _, res := range h.Resources {
			res.Register(admin)
		}
		admin.POST("/applications/:id/auto-assign", h.Applications.AutoAssign)
		admin.POST("/applications/auto-assign-all", h.Applications.AutoAssignAll)

		admin.GET("/support/conversations/:id/messages", h.Support.Messages)
		admin.POST("/support/conversations/:id/messages", h.Support.Reply)

		admin.GET("/dashboard", h.Dashboard.Stats)

		admin.GET("/blog/settings", h.Settings.GetBlog)
		admin.PATCH("/blog/settings", h.Settings.PatchBlog)
		admin.GET("/settings/telegram", h.Settings.GetTelegram)
		admin.PATCH("/settings/telegram", h.Settings.PatchTelegram)

		admin.POST("/gallery/upload", h.Upload.Gallery)

		admin.GET("/audit-log", h.Log.List)

		admin.GET("/cache/metrics", sec.RequireRole(model.RoleAdmin), h.Cache.Metrics)
		admin.POST("/cache/reset", sec.RequireRole(model.RoleAdmin), h.Cache.Reset)
		admin.GET("/debug/oplog", sec.RequireRole(model.RoleAdmin), h.Debug.PeekOpLog)
	}

	r.NoRoute(middleware.NoRoute)
	return r
}
