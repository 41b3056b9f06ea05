package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/user/cinequeue/internal/auth"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/service"
	"github.com/user/cinequeue/internal/utils"
)

const (
	// SessionName Cookie Session 名称
	SessionName = "cinequeue"
	// SessionUserKey Session 中保存登录信息的键
	SessionUserKey = "userinfo"

	ctxUser    = "user"
	ctxToken   = "token"
	ctxSession = "session"
)

// RequireSession 必须登录中间件：校验 Token 并取得（必要时创建并加载）该用户的会话
func RequireSession(provider *auth.Provider, manager *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			utils.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := provider.Verify(token)
		if err != nil {
			utils.Unauthorized(c, "登录状态无效或已过期")
			c.Abort()
			return
		}

		sess, err := manager.Acquire(c.Request.Context(), user.ID, func() service.Identity {
			client := auth.NewClient(provider)
			client.Restore(user, token)
			return client
		})
		if err != nil {
			_ = c.Error(err)
			if errors.Is(err, service.ErrDataFetch) {
				utils.Error(c, http.StatusBadGateway, service.ErrDataFetch.Error())
			} else {
				utils.InternalServerError(c, "")
			}
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// ExtractToken 优先从 Cookie Session 获取 Token，其次从 Authorization Header 获取
func ExtractToken(c *gin.Context) string {
	session := sessions.Default(c)
	if userinfo := session.Get(SessionUserKey); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok && su.Token != "" {
			return su.Token
		}
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetSession 从上下文获取当前会话
func GetSession(c *gin.Context) *service.Session {
	if s, exists := c.Get(ctxSession); exists {
		return s.(*service.Session)
	}
	return nil
}

// GetUser 从上下文获取当前用户
func GetUser(c *gin.Context) model.UserRef {
	if u, exists := c.Get(ctxUser); exists {
		return u.(model.UserRef)
	}
	return model.UserRef{}
}
