package admin

import (
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/service"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct{ d Dependencies }

func NewApplicationHandler(d Dependencies) *ApplicationHandler { return &ApplicationHandler{d: d} }

func (h *ApplicationHandler) AutoAssign(c *gin.Context) {
	id, ok := resource.PathID(c)
	if !ok {
		return
	}
	app, err := h.d.Applications.AutoAssign(c.Request.Context(), id)
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, app)
}

func (h *ApplicationHandler) AutoAssignAll(c *gin.Context) {
	n, err := h.d.Applications.AutoAssignAll(c.Request.Context())
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Assigned(c, n)
}

// Trial is the public trial-lesson form. Errors answer {ok:false, error}
// with the matching status.
func (h *ApplicationHandler) Trial(c *gin.Context) {
	var req service.TrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if _, err := h.d.Applications.SubmitTrial(c.Request.Context(), req); err != nil {
		resource.Fail(c, err)
		return
	}
	response.OK(c)
}
