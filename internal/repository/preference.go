package repository

import (
	"errors"
	"time"

	"github.com/user/shortdrama/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUser 查找用户偏好画像，不存在返回 nil
func (r *PreferenceRepository) FindByUser(userID int) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Save 创建或更新偏好画像
func (r *PreferenceRepository) Save(pref *model.UserPreference) error {
	pref.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"categories", "tags", "actors", "preferred_rating", "viewing", "updated_at",
		}),
	}).Create(pref).Error
}

// Delete 删除用户偏好画像
func (r *PreferenceRepository) Delete(userID int) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.UserPreference{}).Error
}
