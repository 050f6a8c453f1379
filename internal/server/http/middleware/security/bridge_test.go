package security

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bridgeRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", Bridge(secret), func(c *gin.Context) {
		if c.GetBool(CtxBridge) {
			c.String(nethttp.StatusOK, "trusted")
			return
		}
		c.String(nethttp.StatusOK, "anonymous")
	})
	return r
}

func TestBridge(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "bridge-secret-0123456789", "", 200, "anonymous"},
		{"matching secret", "bridge-secret-0123456789", "bridge-secret-0123456789", 200, "trusted"},
		{"wrong secret", "bridge-secret-0123456789", "bridge-secret-9876543210", 401, ""},
		{"secret prefix", "bridge-secret-0123456789", "bridge-secret", 401, ""},
		{"bridge not configured", "", "anything", 401, ""},
		{"not configured no header", "", "", 200, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(BridgeHeader, tt.header)
			}
			w := httptest.NewRecorder()
			bridgeRouter(tt.secret).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
