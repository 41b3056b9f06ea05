package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/middleware"
	"github.com/user/cinequeue/internal/utils"
)

// Favorites 收藏列表
func (h *Handler) Favorites(c *gin.Context) {
	favorites, err := middleware.GetSession(c).ListFavorites(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, favorites)
}

// AddCurrentFavorite 收藏当前电影
func (h *Handler) AddCurrentFavorite(c *gin.Context) {
	fav, err := middleware.GetSession(c).AddCurrentToFavorites(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Created(c, fav)
}

// ToggleFavorite 切换当前电影的收藏状态
func (h *Handler) ToggleFavorite(c *gin.Context) {
	favorited, err := middleware.GetSession(c).ToggleFavorite(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, gin.H{"isFavorite": favorited})
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := middleware.GetSession(c).RemoveFavorite(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已取消收藏", nil)
}
