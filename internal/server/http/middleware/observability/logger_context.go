package observability

import (
	"context"

	"go-studioadmin/internal/logging"

	"github.com/gin-gonic/gin"
)

// LoggerContextMiddleware stores a request logger carrying trace_id (and
// user_id once auth has run) in the request context, so handlers and services
// can use logging.FromContext.
func LoggerContextMiddleware(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(enrich(c, base))
		c.Next()
	}
}

// UserContextMiddleware re-derives the request logger after authentication.
func UserContextMiddleware(base *logging.Logger) gin.HandlerFunc {
	return LoggerContextMiddleware(base)
}

func enrich(c *gin.Context, base *logging.Logger) context.Context {
	ctx := c.Request.Context()
	if v := c.GetString(TraceIDKey); v != "" {
		ctx = context.WithValue(ctx, logging.TraceIDKey, v)
	}
	if uid := c.GetInt64("user_id"); uid > 0 {
		ctx = context.WithValue(ctx, logging.UserIDKey, uid)
	}
	return logging.IntoContext(ctx, base.WithContext(ctx))
}
