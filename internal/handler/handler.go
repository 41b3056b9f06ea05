package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/auth"
	"github.com/user/cinequeue/internal/config"
	"github.com/user/cinequeue/internal/service"
	"github.com/user/cinequeue/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Config   *config.Config
	Auth     *auth.Provider
	Sessions *service.SessionManager
	Log      *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, provider *auth.Provider, sessions *service.SessionManager, log *zap.Logger) *Handler {
	return &Handler{
		Config:   cfg,
		Auth:     provider,
		Sessions: sessions,
		Log:      log.Named("Handler"),
	}
}

// errorStatus 错误分类到 HTTP 状态码和提示
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidRating, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},
	{auth.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrAuth, http.StatusUnauthorized},
	{service.ErrNotSignedIn, http.StatusUnauthorized},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrDuplicateFavorite, http.StatusConflict},
	{auth.ErrEmailTaken, http.StatusConflict},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrNoCurrentMovie, http.StatusNotFound},
	{service.ErrDataFetch, http.StatusBadGateway},
	{service.ErrPersistence, http.StatusBadGateway},
	{service.ErrCascade, http.StatusInternalServerError},
}

// fail 把工作流错误转换为统一响应
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		switch e.status {
		case http.StatusBadRequest:
			utils.BadRequest(c, e.err.Error())
		case http.StatusUnauthorized:
			utils.Unauthorized(c, e.err.Error())
		case http.StatusNotFound:
			utils.NotFound(c, e.err.Error())
		default:
			utils.Error(c, e.status, e.err.Error())
		}
		return
	}
	h.Log.Error("未处理的错误", zap.String("path", c.Request.URL.Path), zap.Error(err))
	utils.InternalServerError(c, "")
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.Sessions.Len(),
	})
}
