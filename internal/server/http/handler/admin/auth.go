package admin

import (
	"errors"

	"go-studioadmin/internal/pkg/resource"
	"go-studioadmin/internal/server/http/middleware/security"
	"go-studioadmin/internal/service"
	"go-studioadmin/internal/util/retcode"
	"go-studioadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.PARAM_INVALID, "email and password are required")
		return
	}
	res, err := h.d.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, retcode.LOGIN_ERROR, err.Error())
		return
	case errors.Is(err, service.ErrUserDisabled):
		response.Error(c, retcode.FORBIDDEN, err.Error())
		return
	case err != nil:
		h.d.Logger.WithContext(c.Request.Context()).Error("login_failed", zap.Error(err))
		response.Error(c, retcode.EXCEPTION, "login failed")
		return
	}
	response.Item(c, gin.H{"token": res.Token, "expires_at": res.ExpiresAt, "user": res.User})
}

// Logout revokes the caller's token. It runs behind the auth middleware.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.d.Auth.Logout(c.Request.Context(), c.GetString(security.CtxJTI)); err != nil {
		h.d.Logger.WithContext(c.Request.Context()).Warn("logout_revoke_failed", zap.Error(err))
	}
	response.OK(c)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.d.Resources.Users.Get(c.Request.Context(), c.GetInt64(security.CtxUserID))
	if err != nil {
		resource.Fail(c, err)
		return
	}
	response.Item(c, u)
}
