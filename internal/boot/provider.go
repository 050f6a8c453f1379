package boot

import (
	"context"
	"net"
	"time"

	"go-studioadmin/internal/config"
	"go-studioadmin/internal/discovery/etcd"
	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/metrics"
	"go-studioadmin/internal/mq/kafka"
	"go-studioadmin/internal/realtime"
	"go-studioadmin/internal/repository/postgres"
	redisrepo "go-studioadmin/internal/repository/redis"
	"go-studioadmin/internal/security/jwt"
	"go-studioadmin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	go_otel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *gorm.DB
	Redis  *redisrepo.Client
	Kafka  *kafka.Producer
	Etcd   *etcd.Client
	JWT    *jwt.Manager
	HTTP   *gin.Engine
	Broker *realtime.Broker

	AsyncAccessSender *kafka.AccessAsyncSender

	registration *etcd.Registration
	tracerProv   *trace.TracerProvider
	stopCh       chan struct{}
	cancel       context.CancelFunc
}

func NewPostgres(c *config.Config, l *logging.Logger) (*gorm.DB, error) {
	return postgres.New(postgres.Config{DSN: c.Postgres.DSN, MaxOpen: c.Postgres.MaxOpen, MaxIdle: c.Postgres.MaxIdle,
		AutoMigrate: c.Postgres.AutoMigrate, LogLevel: c.Postgres.LogLevel}, l)
}

func NewRedis(c *config.Config) *redisrepo.Client {
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB})
}

// NewKafkaProducer returns nil without brokers; the op-log and access-log
// middleware then become no-ops.
func NewKafkaProducer(c *config.Config) *kafka.Producer {
	if len(c.Kafka.Brokers) == 0 || c.Kafka.OpLogTopic == "" {
		return nil
	}
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.OpLogTopic})
}

func NewAccessSender(c *config.Config, p *kafka.Producer, l *logging.Logger) *kafka.AccessAsyncSender {
	if p == nil || !c.Kafka.AccessAsync {
		return nil
	}
	s := kafka.NewAccessAsyncSender(p, l.Named("access_async"), c.Kafka.AccessQueueSize, c.Kafka.AccessWorkers,
		c.Kafka.AccessMaxBatch, time.Duration(c.Kafka.AccessMaxWaitMS)*time.Millisecond)
	s.Start()
	return s
}

func NewEtcd(c *config.Config) (*etcd.Client, error) {
	if len(c.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

func NewJWTManager(c *config.Config) *jwt.Manager {
	return jwt.NewManager(c.JWT.Secret, c.JWT.ExpireSeconds, c.JWT.Issuer)
}

func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(c.Log.Level, c.Log.Format)
}

func NewHub(c *config.Config, l *logging.Logger) *realtime.Hub {
	return realtime.NewHub(realtime.HubOptions{
		SendQueue:    c.Realtime.SendQueue,
		WriteTimeout: time.Duration(c.Realtime.WriteTimeoutMS) * time.Millisecond,
		PingInterval: time.Duration(c.Realtime.PingSeconds) * time.Second,
	}, l.Named("realtime"))
}

func NewBroker(c *config.Config, h *realtime.Hub, r *redisrepo.Client, l *logging.Logger) *realtime.Broker {
	return realtime.NewBroker(h, r, c.Realtime.RedisChannel, l.Named("realtime"))
}

func NewApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, access *kafka.AccessAsyncSender,
	e *etcd.Client, j *jwt.Manager, auth *service.AuthService, broker *realtime.Broker, engine *gin.Engine) *App {
	if c.Postgres.AutoMigrate {
		if err := postgres.Migrate(context.Background(), db, model.All()...); err != nil {
			l.Error("auto_migrate_failed", zap.Error(err))
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Etcd: e, JWT: j, HTTP: engine, Broker: broker,
		AsyncAccessSender: access, stopCh: make(chan struct{}), cancel: cancel}

	if created, err := auth.EnsureBootstrapAdmin(ctx, c.Bootstrap.AdminEmail, c.Bootstrap.AdminPassword); err != nil {
		l.Error("bootstrap_admin_failed", zap.Error(err))
	} else if created {
		l.Info("bootstrap_admin_created", zap.String("email", c.Bootstrap.AdminEmail))
	}

	if r != nil {
		app.startRedisHeartbeat()
	}
	go app.runBroker(ctx)
	if e != nil {
		go app.registerEtcd()
	}
	if c.OTel.Enable {
		app.initTracing()
	}
	return app
}

func (a *App) startRedisHeartbeat() {
	c, l, r := a.Config, a.Logger, a.Redis
	ping := time.Duration(c.Redis.PingTimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), ping)
	defer cancel()
	lastUp := true
	if err := r.Ping(ctx); err != nil {
		lastUp = false
		l.Error("redis_ping_failed", zap.Error(err), zap.String("addr", c.Redis.Addr))
	} else {
		l.Info("redis_ping_ok", zap.String("addr", c.Redis.Addr))
	}
	go func() {
		interval := time.Duration(c.Redis.HeartbeatSec) * time.Second
		if interval < 2*time.Second {
			interval = 2 * time.Second
		}
		for {
			select {
			case <-a.stopCh:
				return
			case <-time.After(interval):
				ctx2, cancel2 := context.WithTimeout(context.Background(), ping)
				err := r.Ping(ctx2)
				cancel2()
				if err != nil {
					metrics.RedisUp.Set(0)
					if lastUp {
						l.Warn("redis_down", zap.Error(err))
					}
					lastUp = false
					continue
				}
				metrics.RedisUp.Set(1)
				if !lastUp {
					l.Info("redis_recovered")
				}
				lastUp = true
			}
		}
	}()
}

// runBroker keeps the Pub/Sub subscription alive, resubscribing with backoff.
func (a *App) runBroker(ctx context.Context) {
	backoff := 500 * time.Millisecond
	for {
		err := a.Broker.Run(ctx)
		if ctx.Err() != nil || (err == nil && a.Redis == nil) {
			return
		}
		a.Logger.Warn("realtime_subscription_lost", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

func (a *App) registerEtcd() {
	c, l := a.Config, a.Logger
	port := "0"
	if _, p, err := net.SplitHostPort(c.HTTP.Addr); err == nil && p != "" {
		port = p
	}
	ip := firstNonLoopbackIPv4()
	if ip == "" {
		ip = "127.0.0.1"
	}
	inst := etcd.Instance{
		ID:        uuid.NewString(),
		Env:       c.AppMeta.Env,
		Version:   c.AppMeta.Version,
		Host:      ip,
		Port:      port,
		Addr:      c.HTTP.Addr,
		StartedAt: time.Now().Unix(),
	}
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		reg, err := a.Etcd.Register(context.Background(), inst)
		if err == nil {
			a.registration = reg
			metrics.EtcdUp.Set(1)
			l.Info("etcd_registered", zap.String("key", reg.Key))
			return
		}
		if attempt >= maxAttempts {
			l.Error("etcd_register_failed", zap.Error(err), zap.Int("attempt", attempt))
			return
		}
		backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
		l.Warn("etcd_register_retry", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
		select {
		case <-a.stopCh:
			return
		case <-time.After(backoff):
		}
	}
}

func (a *App) initTracing() {
	c, l := a.Config, a.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(c.OTel.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(exporterCredentials(c.OTel.Insecure))),
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		l.Error("otel_exporter_init_failed", zap.Error(err))
		return
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
	))
	sampler := trace.ParentBased(trace.TraceIDRatioBased(c.OTel.SamplerRatio))
	a.tracerProv = trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res), trace.WithSampler(sampler))
	go_otel.SetTracerProvider(a.tracerProv)
	l.Info("otel_tracer_provider_initialized")
	if a.DB != nil {
		if err := a.DB.Use(tracing.NewPlugin()); err != nil {
			l.Error("gorm_tracing_plugin_failed", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := redisotel.InstrumentTracing(a.Redis.Client); err != nil {
			l.Error("redis_tracing_hook_failed", zap.Error(err))
		}
	}
}

// exporterCredentials dials the collector in plaintext only when otel.insecure
// is set; otherwise TLS with the system roots.
func exporterCredentials(plaintext bool) credentials.TransportCredentials {
	if plaintext {
		return insecure.NewCredentials()
	}
	return credentials.NewClientTLSFromCert(nil, "")
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.stopCh != nil {
		close(a.stopCh)
	}
	if a.Broker != nil {
		a.Broker.Hub().Close()
	}
	if a.Etcd != nil && a.registration != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.Etcd.Deregister(ctx, a.registration); err != nil {
			a.Logger.Error("etcd_deregister_failed", zap.Error(err))
		}
		cancel()
		metrics.EtcdUp.Set(0)
	}
	// Drain queued access records before the producer goes away.
	if a.AsyncAccessSender != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.AsyncAccessSender.Close(ctx)
		cancel()
	}
	if a.DB != nil {
		postgres.Close(a.DB, a.Logger)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	if a.tracerProv != nil {
		if err := a.tracerProv.Shutdown(context.Background()); err != nil {
			a.Logger.Error("otel_tracer_shutdown_error", zap.Error(err))
		}
	}
}

func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip = ip.To4(); ip != nil {
				return ip.String()
			}
		}
	}
	return ""
}
