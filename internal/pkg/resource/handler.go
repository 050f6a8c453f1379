package resource

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Routable is anything that mounts its routes on an admin router group.
type Routable interface {
	Register(r gin.IRouter)
}

// Handler exposes a Service as the admin REST collection at /{Name}.
type Handler[T any, PT Model[T]] struct {
	Svc *Service[T, PT]
}

func NewHandler[T any, PT Model[T]](svc *Service[T, PT]) *Handler[T, PT] {
	return &Handler[T, PT]{Svc: svc}
}

func (h *Handler[T, PT]) Register(r gin.IRouter) {
	base := "/" + h.Svc.Name()
	r.GET(base, h.List)
	r.POST(base, h.Create)
	r.GET(base+"/:id", h.Get)
	r.PATCH(base+"/:id", h.Update)
	r.DELETE(base+"/:id", h.Delete)
}

func (h *Handler[T, PT]) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		Fail(c, err)
		return
	}
	response.Items(c, items)
}

func (h *Handler[T, PT]) Get(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	item, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	response.Item(c, item)
}

func (h *Handler[T, PT]) Create(c *gin.Context) {
	var item T
	if err := BindJSON(c, &item); err != nil {
		Fail(c, err)
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), &item)
	if err != nil {
		Fail(c, err)
		return
	}
	response.Item(c, created)
}

func (h *Handler[T, PT]) Update(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		Fail(c, Invalidf("unreadable body"))
		return
	}
	item, err := h.Svc.Update(c.Request.Context(), id, body)
	if err != nil {
		Fail(c, err)
		return
	}
	response.Item(c, item)
}

func (h *Handler[T, PT]) Delete(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}
	response.OK(c)
}

// PathID parses :id; on failure the error response is already written.
func PathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, retcode.PARAM_INVALID, "invalid id")
		return 0, false
	}
	return id, true
}

// BindJSON decodes the body without running validation; services validate
// after normalization so blank optionals are already NULL.
func BindJSON(c *gin.Context, v any) error {
	body, err := c.GetRawData()
	if err != nil {
		return Invalidf("unreadable body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return Invalidf("malformed JSON: %v", err)
	}
	return nil
}

// Fail maps service errors onto the legacy code and HTTP status.
func Fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, retcode.NOT_EXISTS, "not found")
	case errors.As(err, &verrs):
		response.Error(c, retcode.PARAM_INVALID, describe(verrs))
	case errors.Is(err, ErrInvalid):
		response.Error(c, retcode.PARAM_INVALID, message(err, ErrInvalid))
	case errors.Is(err, ErrConflict):
		response.Error(c, retcode.NO_MATCH, message(err, ErrConflict))
	default:
		logging.FromContext(c.Request.Context()).Error("resource_storage_error",
			zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, retcode.DB_SAVE_ERROR, "storage error")
	}
}

func message(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
