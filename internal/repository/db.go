package repository

import (
	"fmt"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Drama{},
		&model.Category{},
		&model.User{},
		&model.UserSession{},
		&model.UserPreference{},
		&model.SearchHistory{},
		&model.WatchHistory{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB            *gorm.DB
	Drama         *DramaRepository
	Category      *CategoryRepository
	User          *UserRepository
	Session       *SessionRepository
	Preference    *PreferenceRepository
	SearchHistory *SearchHistoryRepository
	WatchHistory  *WatchHistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:            db,
		Drama:         NewDramaRepository(db),
		Category:      NewCategoryRepository(db),
		User:          NewUserRepository(db),
		Session:       NewSessionRepository(db),
		Preference:    NewPreferenceRepository(db),
		SearchHistory: NewSearchHistoryRepository(db),
		WatchHistory:  NewWatchHistoryRepository(db),
	}
}
