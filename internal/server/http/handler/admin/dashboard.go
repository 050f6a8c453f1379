package admin

import (
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ d Dependencies }

func NewDashboardHandler(d Dependencies) *DashboardHandler { return &DashboardHandler{d: d} }

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.d.Dashboard.Stats(c.Request.Context())
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Items(c, stats)
}
