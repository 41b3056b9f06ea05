package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/utils"
)

type addMovieRequest struct {
	Title     string `json:"title" form:"title" binding:"max=200"`
	PosterURL string `json:"posterUrl" form:"posterUrl" binding:"omitempty,url"`
}

// AddMovie 添加自己的电影
func (h *Handler) AddMovie(c *gin.Context) {
	var req addMovieRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "电影信息不合法")
		return
	}

	movie, err := middleware.GetSession(c).AddMovie(c.Request.Context(), req.Title, req.PosterURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Created(c, movie)
}

// DeactivateMovie 下架自己添加的电影
func (h *Handler) DeactivateMovie(c *gin.Context) {
	if err := middleware.GetSession(c).DeactivateMovie(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "电影已下架", nil)
}
