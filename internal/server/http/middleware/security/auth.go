package security

import (
	"strings"

	"go-studioadmin/internal/logging"
	redisrepo "go-studioadmin/internal/repository/redis"
	"go-studioadmin/internal/security/jwt"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Auth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxJTI    = "jti"
)

type AuthMiddleware struct {
	JWT    *jwt.Manager
	Logger *logging.Logger
	Redis  *redisrepo.Client
	Prefix string
	// AllowQueryToken accepts ?token= for clients that cannot set headers (websocket).
	AllowQueryToken bool
}

func NewAuth(j *jwt.Manager, lg *logging.Logger, r *redisrepo.Client, prefix string) *AuthMiddleware {
	if prefix == "" {
		prefix = "jwt:jti:"
	}
	if lg == nil {
		lg = logging.Nop()
	}
	return &AuthMiddleware{JWT: j, Logger: lg, Redis: r, Prefix: prefix}
}

// Handler validates the bearer token and, with Redis configured, that its
// JTI has not been revoked by logout.
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			response.Abort(c, retcode.AUTH_ERROR, "missing token")
			return
		}
		claims, err := m.JWT.Parse(token)
		if jwt.IsExpired(err) {
			response.Abort(c, retcode.TOKEN_TIMEOUT, "token expired")
			return
		}
		if err != nil {
			m.Logger.WithContext(c.Request.Context()).Debug("auth_token_rejected", zap.Error(err))
			response.Abort(c, retcode.AUTH_ERROR, "invalid token")
			return
		}
		if m.Redis != nil && !m.Redis.Exists(c.Request.Context(), m.Prefix+claims.JTI) {
			response.Abort(c, retcode.TOKEN_TIMEOUT, "token expired")
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxJTI, claims.JTI)
		c.Next()
	}
}

// WithQueryToken returns a copy that also reads the token query parameter.
func (m *AuthMiddleware) WithQueryToken() *AuthMiddleware {
	cp := *m
	cp.AllowQueryToken = true
	return &cp
}

func (m *AuthMiddleware) token(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if m.AllowQueryToken {
		return c.Query("token")
	}
	return ""
}
