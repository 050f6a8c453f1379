package middleware

import (
	"go-studioadmin/internal/config"

	"github.com/gin-gonic/gin"
)

const ConfigKey = "app_config"

// ConfigInjector exposes the loaded config to later middleware and handlers.
func ConfigInjector(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg != nil {
			c.Set(ConfigKey, cfg)
		}
		c.Next()
	}
}

// ConfigFrom returns the injected config or nil.
func ConfigFrom(c *gin.Context) *config.Config {
	if v, ok := c.Get(ConfigKey); ok {
		if cfg, ok := v.(*config.Config); ok {
			return cfg
		}
	}
	return nil
}
