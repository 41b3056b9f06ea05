package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/user/cinequeue/internal/config"
	"github.com/user/cinequeue/internal/model"
)

// InitDB 初始化数据库连接并执行迁移
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "memory":
		// 文档存放在内存中，身份记录使用共享的内存 SQLite
		dialector = sqlite.Open("file::memory:?cache=shared")
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", cfg.DBDriver)
	}

	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取连接池失败: %w", err)
	}
	if cfg.DBDriver == "postgres" || cfg.DBDriver == "postgresql" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 迁移身份表和文档表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &DocumentRecord{})
}

// Repositories 仓库集合
type Repositories struct {
	Store    DocumentStore
	User     *UserRepository
	Movie    *MovieRepository
	Review   *ReviewRepository
	Favorite *FavoriteRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, store DocumentStore, log *zap.Logger) *Repositories {
	return &Repositories{
		Store:    store,
		User:     NewUserRepository(db),
		Movie:    NewMovieRepository(store, log),
		Review:   NewReviewRepository(store, log),
		Favorite: NewFavoriteRepository(store, log),
	}
}

// OpenStore 根据配置选择文档存储实现
func OpenStore(cfg *config.Config, db *gorm.DB) DocumentStore {
	if cfg.DBDriver == "memory" {
		return NewMemoryStore()
	}
	return NewGormStore(db)
}
