package model

import (
	"time"

	"gorm.io/datatypes"
)

// 用户角色
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusBanned   = "banned"
	UserStatusPending  = "pending"
)

// Profile 用户资料子文档
type Profile struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
}

// NotificationPrefs 通知偏好子文档
type NotificationPrefs struct {
	Email  bool `json:"email"`
	Push   bool `json:"push"`
	Digest bool `json:"digest"`
}

// UserStats 聚合统计子文档
type UserStats struct {
	WatchTimeMinutes int64 `json:"watchTimeMinutes"`
	FavoriteCount    int64 `json:"favoriteCount"`
	WatchedCount     int64 `json:"watchedCount"`
}

// User 用户模型
type User struct {
	ID            int                                   `json:"id" gorm:"primaryKey"`
	Username      string                                `json:"username" gorm:"uniqueIndex"`
	Email         string                                `json:"email" gorm:"uniqueIndex"`
	PasswordHash  string                                `json:"-" gorm:"column:password_hash"`
	Role          string                                `json:"role" gorm:"default:user"`
	Status        string                                `json:"status" gorm:"default:active"`
	Profile       datatypes.JSONType[Profile]           `json:"profile"`
	Notifications datatypes.JSONType[NotificationPrefs] `json:"notifications"`
	Stats         datatypes.JSONType[UserStats]         `json:"stats"`
	LastLoginAt   *time.Time                            `json:"lastLoginAt" gorm:"column:last_login_at"`
	CreatedAt     time.Time                             `json:"createdAt"`
	UpdatedAt     time.Time                             `json:"updatedAt"`
}
