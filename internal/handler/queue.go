package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/service"
	"github.com/user/cinequeue/internal/utils"
)

type rateRequest struct {
	Rating int `json:"rating" form:"rating" binding:"required"`
}

type rateResponse struct {
	Review model.Review      `json:"review"`
	Queue  service.QueueView `json:"queue"`
}

// Queue 当前待评分电影
func (h *Handler) Queue(c *gin.Context) {
	utils.Success(c, middleware.GetSession(c).Current())
}

// Skip 没看过，跳到下一部
func (h *Handler) Skip(c *gin.Context) {
	utils.Success(c, middleware.GetSession(c).Skip())
}

// Rate 看过，为当前电影评分
func (h *Handler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, service.ErrInvalidRating.Error())
		return
	}

	sess := middleware.GetSession(c)
	review, err := sess.RateCurrent(c.Request.Context(), req.Rating)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, rateResponse{Review: review, Queue: sess.Current()})
}

// Reload 重新加载队列
func (h *Handler) Reload(c *gin.Context) {
	view, err := middleware.GetSession(c).Load(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, view)
}
