package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr           string   `mapstructure:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
		LogLevel    string `mapstructure:"log_level"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr          string `mapstructure:"addr"`
		Password      string `mapstructure:"password"`
		DB            int    `mapstructure:"db"`
		JTIPrefix     string `mapstructure:"jti_prefix"`
		PingTimeoutMS int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec  int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers         []string `mapstructure:"brokers"`
		OpLogTopic      string   `mapstructure:"op_log_topic"`
		OpLogGroup      string   `mapstructure:"op_log_group"`
		AccessAsync     bool     `mapstructure:"access_async"`
		AccessQueueSize int      `mapstructure:"access_queue_size"`
		AccessWorkers   int      `mapstructure:"access_workers"`
		AccessMaxBatch  int      `mapstructure:"access_max_batch"`
		AccessMaxWaitMS int      `mapstructure:"access_max_wait_ms"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret        string `mapstructure:"secret"`
		ExpireSeconds int    `mapstructure:"expire_seconds"`
		Issuer        string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	Upload struct {
		Dir        string   `mapstructure:"dir"`
		MaxSizeMB  int      `mapstructure:"max_size_mb"`
		AllowedExt []string `mapstructure:"allowed_ext"`
	} `mapstructure:"upload"`
	Cache struct {
		ListTTLSeconds int `mapstructure:"list_ttl_seconds"`
	} `mapstructure:"cache"`
	Billing struct {
		DueSoonDays int `mapstructure:"due_soon_days"`
	} `mapstructure:"billing"`
	Realtime struct {
		RedisChannel   string `mapstructure:"redis_channel"`
		SendQueue      int    `mapstructure:"send_queue"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingSeconds    int    `mapstructure:"ping_seconds"`
	} `mapstructure:"realtime"`
	Support struct {
		// BridgeSecret authenticates the Telegram bridge on the inbound
		// support endpoint; empty disables trusted inbound callers.
		BridgeSecret string `mapstructure:"bridge_secret"`
	} `mapstructure:"support"`
	Bootstrap struct {
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"bootstrap"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"`
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_meta.name", "studio-admin")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("redis.jti_prefix", "jwt:jti:")
	v.SetDefault("redis.ping_timeout_ms", 500)
	v.SetDefault("redis.heartbeat_sec", 10)
	v.SetDefault("kafka.op_log_group", "studio-oplog")
	v.SetDefault("kafka.access_queue_size", 10000)
	v.SetDefault("kafka.access_workers", 1)
	v.SetDefault("kafka.access_max_batch", 50)
	v.SetDefault("kafka.access_max_wait_ms", 20)
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("upload.dir", "upload")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.allowed_ext", []string{"jpg", "jpeg", "png", "gif", "webp"})
	v.SetDefault("cache.list_ttl_seconds", 60)
	v.SetDefault("billing.due_soon_days", 7)
	v.SetDefault("realtime.redis_channel", "studio:realtime")
	v.SetDefault("realtime.send_queue", 64)
	v.SetDefault("realtime.write_timeout_ms", 5000)
	v.SetDefault("realtime.ping_seconds", 30)
	v.SetDefault("support.bridge_secret", "")
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret too short (>=16)")
	}
	if c.JWT.ExpireSeconds <= 0 {
		return fmt.Errorf("jwt.expire_seconds must be > 0")
	}
	if s := c.Support.BridgeSecret; s != "" && len(s) < 16 {
		return errors.New("support.bridge_secret too short (>=16)")
	}
	if c.Billing.DueSoonDays < 0 {
		return errors.New("billing.due_soon_days must be >= 0")
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	return nil
}
