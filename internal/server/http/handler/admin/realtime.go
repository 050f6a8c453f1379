package admin

import (
	"go-studioadmin/internal/server/http/middleware/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RealtimeHandler struct{ d Dependencies }

func NewRealtimeHandler(d Dependencies) *RealtimeHandler { return &RealtimeHandler{d: d} }

// Connect upgrades to a websocket and streams push frames until either side closes.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	lg := h.d.Logger.WithContext(c.Request.Context())
	lg.Info("realtime_connect", zap.Int64("user_id", c.GetInt64(security.CtxUserID)))
	if err := h.d.Hub.Serve(c.Writer, c.Request); err != nil {
		lg.Warn("realtime_closed", zap.Error(err))
	}
}
