package boot

import (
	"time"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/discovery/etcd"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/mq/kafka"
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/internal/realtime"
	redisrepo "go-studioadmin/internal/repository/redis"
	jwtsec "go-studioadmin/internal/security/jwt"
	httpSrv "go-studioadmin/internal/server/http"
	handlerset "go-studioadmin/internal/server/http/handler"
	adminh "go-studioadmin/internal/server/http/handler/admin"
	debugh "go-studioadmin/internal/server/http/handler/debug"
	"go-studioadmin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// ProvideLayeredCache builds the shared cache: short-lived process L1 over Redis L2.
// L1 entries live briefly because other instances only invalidate their own L1.
func ProvideLayeredCache(r *redisrepo.Client) cache.Cache {
	l1 := cache.NewMemory(5 * time.Second)
	if r == nil {
		return cache.NewLayered(l1, nil)
	}
	return cache.NewLayered(l1, cache.NewRedisAdapter(r, "studio:"))
}

func ProvideResources(db *gorm.DB, c cache.Cache, cfg *config.Config) *service.Resources {
	return service.NewResources(db, c, service.Options{
		ListTTL: time.Duration(cfg.Cache.ListTTLSeconds) * time.Second,
		DueSoon: time.Duration(cfg.Billing.DueSoonDays) * 24 * time.Hour,
	})
}

func ProvideAuthService(res *service.Resources, j *jwtsec.Manager, r *redisrepo.Client, cfg *config.Config) *service.AuthService {
	return service.NewAuthService(res, j, r, cfg.Redis.JTIPrefix)
}

func ProvideHandlerSet(res *service.Resources, auth *service.AuthService, apps *service.ApplicationService, support *service.SupportService,
	dash *service.DashboardService, settings *service.Settings, logs *service.LogService, hub *realtime.Hub,
	cfg *config.Config, c cache.Cache, l *logging.Logger) *handlerset.HandlerSet {
	ad := adminh.Dependencies{
		Resources: res, Auth: auth, Applications: apps, Support: support, Dashboard: dash, Settings: settings,
		Log: logs, Hub: hub, Config: cfg, Cache: c, Logger: l,
	}
	return handlerset.NewHandlerSet(ad, debugh.Dependencies{Config: cfg, Logger: l})
}

func ProvideRouter(cfg *config.Config, l *logging.Logger, j *jwtsec.Manager, db *gorm.DB, r *redisrepo.Client, p *kafka.Producer,
	access *kafka.AccessAsyncSender, e *etcd.Client, h *handlerset.HandlerSet) *gin.Engine {
	return httpSrv.NewRouter(httpSrv.Infra{Config: cfg, Logger: l, JWT: j, DB: db, Redis: r, Producer: p, Access: access, Etcd: e}, h)
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	NewAccessSender,
	NewEtcd,
	NewJWTManager,
	ProvideLayeredCache,
	NewHub,
	NewBroker,
	wire.Bind(new(service.SupportPublisher), new(*realtime.Broker)),
	// services
	ProvideResources,
	ProvideAuthService,
	service.NewApplicationService,
	service.NewSupportService,
	service.NewDashboardService,
	service.NewSettings,
	service.NewLogService,
	ProvideHandlerSet,
	ProvideRouter,
	NewApp,
)
