package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/utils"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type authResponse struct {
	User  model.UserRef `json:"user"`
	Token string        `json:"token"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "请填写邮箱和密码")
		return
	}

	user, token, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.saveLogin(c, user, token)
	utils.Created(c, authResponse{User: user, Token: token})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "请填写邮箱和密码")
		return
	}

	user, token, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.saveLogin(c, user, token)
	utils.Success(c, authResponse{User: user, Token: token})
}

// Logout 登出：只吊销本设备的 Token，会话由该 Token 建立时一并关闭
func (h *Handler) Logout(c *gin.Context) {
	if token := middleware.ExtractToken(c); token != "" {
		if user, err := h.Auth.Verify(token); err == nil {
			h.Sessions.SignOut(user.ID, token)
		}
		h.Auth.Revoke(token)
	}

	h.clearLogin(c)
	utils.SuccessWithMessage(c, "已退出登录", nil)
}

// saveLogin 保存登录信息到 Session
func (h *Handler) saveLogin(c *gin.Context, user model.UserRef, token string) {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, model.SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Token: token,
	})
	if err := session.Save(); err != nil {
		h.Log.Warn("保存 Session 失败", zap.Error(err))
	}
}

// clearLogin 清理 Session
func (h *Handler) clearLogin(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.Log.Warn("清理 Session 失败", zap.Error(err))
	}
}
