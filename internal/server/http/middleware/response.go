package middleware

import (
	"fmt"

	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into the standard error envelope. In the dev
// environment the panic value is echoed in the error text.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(c.Request.Context()).Error("http_panic",
					zap.Any("panic", rec), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
				if !c.Writer.Written() {
					msg := "internal error"
					if cfg := ConfigFrom(c); cfg != nil && cfg.AppMeta.Env == "dev" {
						msg = fmt.Sprintf("internal error: %v", rec)
					}
					response.Error(c, retcode.EXCEPTION, msg)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NoRoute answers unknown paths with the error envelope.
func NoRoute(c *gin.Context) {
	response.Error(c, retcode.NOT_EXISTS, "route not found")
}
