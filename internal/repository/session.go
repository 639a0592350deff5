package repository

import (
	"errors"
	"time"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 创建会话
func (r *SessionRepository) Create(session *model.UserSession) error {
	return r.db.Create(session).Error
}

// FindByID 根据会话 ID 查找
func (r *SessionRepository) FindByID(id string) (*model.UserSession, error) {
	var session model.UserSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Rotate 刷新时轮换令牌与过期时间
func (r *SessionRepository) Rotate(id, refreshToken string, expiresAt time.Time) error {
	return r.db.Model(&model.UserSession{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"refresh_token": refreshToken,
			"expires_at":    expiresAt,
		}).Error
}

// Delete 删除单个会话（登出）
func (r *SessionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.UserSession{}).Error
}

// DeleteByUser 删除用户的全部会话（logout-all / 封禁）
func (r *SessionRepository) DeleteByUser(userID int) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&model.UserSession{})
	return result.RowsAffected, result.Error
}

// DeleteExpired 清理已过期会话
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.UserSession{})
	return result.RowsAffected, result.Error
}

// CountByUser 用户当前会话数
func (r *SessionRepository) CountByUser(userID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserSession{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
