package main

import (
	"context"
	"encoding/gob"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/user/cinequeue/internal/auth"
	"github.com/user/cinequeue/internal/config"
	"github.com/user/cinequeue/internal/handler"
	"github.com/user/cinequeue/internal/logger"
	"github.com/user/cinequeue/internal/model"
	"github.com/user/cinequeue/internal/repository"
	"github.com/user/cinequeue/internal/router"
	"github.com/user/cinequeue/internal/service"
)

func main() {
	// 注册 Session 模型
	gob.Register(model.SessionUser{})

	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	// 初始化数据库
	db, err := repository.InitDB(cfg)
	if err != nil {
		zlog.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库
	store := repository.OpenStore(cfg, db)
	repos := repository.NewRepositories(db, store, zlog)

	provider := auth.NewProvider(repos.User, cfg, zlog)
	sessions, err := service.NewSessionManager(repos, cfg.SessionCacheSize, cfg.SessionIdle, zlog)
	if err != nil {
		zlog.Fatal("初始化会话管理失败", zap.Error(err))
	}

	// 启动定时清理任务
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	service.NewCleanupService(sessions, cfg.SessionIdle, zlog).Start(cleanupCtx)

	h := handler.NewHandler(cfg, provider, sessions, zlog)
	r := router.New(h, zlog)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		zlog.Info("服务器启动", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("正在关闭服务器...")
	stopCleanup()

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("服务器强制关闭", zap.Error(err))
	}

	zlog.Info("服务器已退出")
}
