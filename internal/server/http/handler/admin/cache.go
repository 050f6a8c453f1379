package admin

import (
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct{ d Dependencies }

func NewCacheHandler(d Dependencies) *CacheHandler { return &CacheHandler{d: d} }

// Metrics reports layered-cache hit counters; a non-layered cache reports zeros.
func (h *CacheHandler) Metrics(c *gin.Context) {
	var m cache.LayeredMetrics
	if lc, ok := h.d.Cache.(*cache.LayeredCache); ok && lc != nil {
		m = lc.SnapshotMetrics()
	}
	response.Item(c, m)
}

func (h *CacheHandler) Reset(c *gin.Context) {
	if lc, ok := h.d.Cache.(*cache.LayeredCache); ok && lc != nil {
		lc.ResetMetrics()
	}
	response.OK(c)
}
