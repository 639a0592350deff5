package repository

import (
	"errors"
	"time"

	"github.com/user/shortdrama/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户
func (r *UserRepository) Create(username, email, password string) (*model.User, error) {
	// 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
		Notifications: datatypes.NewJSONType(model.NotificationPrefs{
			Email: true,
			Push:  true,
		}),
		CreatedAt: time.Now(),
	}

	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername 根据用户名查找用户
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(id int) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// UpdatePassword 更新密码
func (r *UserRepository) UpdatePassword(userID int, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error
}

// UpdateProfile 更新资料子文档
func (r *UserRepository) UpdateProfile(userID int, profile model.Profile) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("profile", datatypes.NewJSONType(profile)).Error
}

// UpdateNotifications 更新通知偏好
func (r *UserRepository) UpdateNotifications(userID int, prefs model.NotificationPrefs) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("notifications", datatypes.NewJSONType(prefs)).Error
}

// UpdateStatus 更新用户状态（封禁/解封等）
func (r *UserRepository) UpdateStatus(userID int, status string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("status", status).Error
}

// UpdateRole 更新用户角色
func (r *UserRepository) UpdateRole(userID int, role string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("role", role).Error
}

// UpdateLastLogin 记录最近登录时间
func (r *UserRepository) UpdateLastLogin(userID int) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_login_at", time.Now()).Error
}

// UpdateStats 更新聚合统计
func (r *UserRepository) UpdateStats(userID int, stats model.UserStats) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("stats", datatypes.NewJSONType(stats)).Error
}

// List 分页用户列表，可按用户名/邮箱子串与状态过滤
func (r *UserRepository) List(page, limit int, search, status string) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.Model(&model.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", like, like)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

// Count 用户总数
func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Count(&count).Error
	return count, err
}

// SearchText 用户名/昵称/简介子串搜索（搜索服务的候选集）
func (r *UserRepository) SearchText(keyword string, limit int) ([]model.User, error) {
	like := "%" + keyword + "%"
	var users []model.User
	err := r.db.
		Where("username ILIKE ? OR profile->>'nickname' ILIKE ? OR profile->>'bio' ILIKE ?",
			like, like, like).
		Limit(limit).
		Find(&users).Error
	return users, err
}
