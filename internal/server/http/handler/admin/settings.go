package admin

import (
	"context"

	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ d Dependencies }

func NewSettingsHandler(d Dependencies) *SettingsHandler { return &SettingsHandler{d: d} }

type singleton[T any] interface {
	Get(ctx context.Context) (*T, error)
	Update(ctx context.Context, patch []byte) (*T, error)
}

func getSingleton[T any](c *gin.Context, s singleton[T]) {
	v, err := s.Get(c.Request.Context())
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, v)
}

func patchSingleton[T any](c *gin.Context, s singleton[T]) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		resource.Fail(c, resource.Invalidf("empty body"))
		return
	}
	v, err := s.Update(c.Request.Context(), body)
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, v)
}

func (h *SettingsHandler) GetBlog(c *gin.Context)       { getSingleton(c, h.d.Settings.Blog) }
func (h *SettingsHandler) PatchBlog(c *gin.Context)     { patchSingleton(c, h.d.Settings.Blog) }
func (h *SettingsHandler) GetTelegram(c *gin.Context)   { getSingleton(c, h.d.Settings.Telegram) }
func (h *SettingsHandler) PatchTelegram(c *gin.Context) { patchSingleton(c, h.d.Settings.Telegram) }
