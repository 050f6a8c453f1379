package admin

import (
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/service"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type LogHandler struct{ d Dependencies }

func NewLogHandler(d Dependencies) *LogHandler { return &LogHandler{d: d} }

// List pages through the audit log, newest first.
func (h *LogHandler) List(c *gin.Context) {
	page, limit := pageLimit(c)
	res, err := h.d.Log.List(c.Request.Context(), service.LogQuery{
		UserID:   qInt64(c, "user_id"),
		Keywords: c.Query("q"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Page(c, res.Items, res.Count)
}
