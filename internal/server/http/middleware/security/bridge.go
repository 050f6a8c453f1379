package security

import (
	"crypto/subtle"

	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// CtxBridge is true for requests authenticated with the bridge secret.
	CtxBridge    = "bridge"
	BridgeHeader = "X-Bridge-Secret"
)

// Bridge marks requests carrying the shared bridge secret as trusted.
// Requests without the header pass through untrusted; a wrong secret, or any
// secret while none is configured, is rejected.
func Bridge(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := c.GetHeader(BridgeHeader)
		if got == "" {
			c.Next()
			return
		}
		if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			response.Abort(c, retcode.AUTH_ERROR, "invalid bridge secret")
			return
		}
		c.Set(CtxBridge, true)
		c.Next()
	}
}
