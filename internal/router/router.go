package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/handler"
	"github.com/user/cinequeue/internal/middleware"
)

// New 创建 Gin 引擎并挂载中间件与路由
func New(h *handler.Handler, log *zap.Logger) *gin.Engine {
	if h.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(h.Config.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.Config.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(middleware.SessionName, store))

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 会话 API（需要登录）====================
	api := r.Group("/api")
	api.Use(middleware.RequireSession(h.Auth, h.Sessions))
	{
		// 待评分队列
		api.GET("/queue", h.Queue)
		api.POST("/queue/skip", h.Skip)
		api.POST("/queue/rate", h.Rate)
		api.POST("/queue/reload", h.Reload)

		// 收藏
		api.GET("/favorites", h.Favorites)
		api.POST("/favorites/current", h.AddCurrentFavorite)
		api.POST("/favorites/toggle", h.ToggleFavorite)
		api.DELETE("/favorites/:id", h.RemoveFavorite)

		// 评分历史
		api.GET("/reviews", h.Reviews)
		api.DELETE("/reviews/:id", h.DeleteReview)
		api.POST("/reviews/:id/favorite", h.PromoteReview)

		// 用户电影
		api.POST("/movies", h.AddMovie)
		api.POST("/movies/:id/deactivate", h.DeactivateMovie)

		// 账号
		api.POST("/account/delete", h.DeleteAccount)
	}
}
