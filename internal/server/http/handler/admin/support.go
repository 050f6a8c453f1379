package admin

import (
	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/server/http/middleware/security"
	"go-studioadmin/internal/service"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupportHandler struct{ d Dependencies }

func NewSupportHandler(d Dependencies) *SupportHandler { return &SupportHandler{d: d} }

func (h *SupportHandler) Messages(c *gin.Context) {
	id, ok := resource.PathID(c)
	if !ok {
		return
	}
	msgs, err := h.d.Support.ListMessages(c.Request.Context(), id)
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Items(c, msgs)
}

type replyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *SupportHandler) Reply(c *gin.Context) {
	id, ok := resource.PathID(c)
	if !ok {
		return
	}
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.PARAM_INVALID, "body is required")
		return
	}
	msg, err := h.d.Support.Reply(c.Request.Context(), id, req.Body, c.GetInt64(security.CtxUserID))
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, msg)
}

// Inbound accepts a user message from the site widget or the Telegram bridge.
// Anonymous callers may only open a new conversation; continuing one or
// naming a user takes the bridge secret.
func (h *SupportHandler) Inbound(c *gin.Context) {
	var in service.InboundMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if !c.GetBool(security.CtxBridge) && (in.ConversationID != 0 || in.UserID != nil) {
		response.Error(c, retcode.AUTH_ERROR, "conversation_id and user_id require bridge credentials")
		return
	}
	msg, err := h.d.Support.Inbound(c.Request.Context(), in)
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, msg)
}
