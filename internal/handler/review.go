package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/utils"
)

// Reviews 评分历史
func (h *Handler) Reviews(c *gin.Context) {
	reviews, err := middleware.GetSession(c).ListReviews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, reviews)
}

// DeleteReview 删除评分
func (h *Handler) DeleteReview(c *gin.Context) {
	if err := middleware.GetSession(c).DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "评分已删除", nil)
}

// PromoteReview 从评分历史加入收藏
func (h *Handler) PromoteReview(c *gin.Context) {
	fav, err := middleware.GetSession(c).PromoteReviewToFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Created(c, fav)
}
