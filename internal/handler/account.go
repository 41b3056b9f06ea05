package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/utils"
)

type deleteAccountRequest struct {
	Password string `json:"password" form:"password" binding:"required"`
}

// DeleteAccount 注销账号，需要重新输入密码
func (h *Handler) DeleteAccount(c *gin.Context) {
	var req deleteAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "请输入密码以确认注销")
		return
	}

	sess := middleware.GetSession(c)
	if err := sess.DeleteAccount(c.Request.Context(), req.Password); err != nil {
		h.fail(c, err)
		return
	}

	h.Sessions.Remove(sess.User().ID)
	h.clearLogin(c)
	utils.SuccessWithMessage(c, "账号已注销", nil)
}
