package model

import "time"

// UserSession 登录会话，每次登录一条
// 刷新令牌通过 jti 绑定到会话，logout-all / 封禁时按用户批量删除
type UserSession struct {
	ID           string    `json:"id" gorm:"primaryKey"` // UUID
	UserID       int       `json:"userId" gorm:"column:user_id;index"`
	RefreshToken string    `json:"-" gorm:"column:refresh_token"`
	UserAgent    string    `json:"userAgent" gorm:"column:user_agent"`
	IPHash       string    `json:"-" gorm:"column:ip_hash"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"column:expires_at;index"`
	CreatedAt    time.Time `json:"createdAt"`
}
