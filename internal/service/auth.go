package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/user/shortdrama/internal/cache"
	"github.com/user/shortdrama/internal/config"
	"github.com/user/shortdrama/internal/model"
)

// Claims 访问令牌声明
type Claims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// RefreshClaims 刷新令牌声明，jti 绑定会话
type RefreshClaims struct {
	UserID    int    `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// AuthTokens 一次签发的令牌对
type AuthTokens struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type authUserStore interface {
	Create(username, email, password string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByID(id int) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	UpdateLastLogin(userID int) error
}

type authSessionStore interface {
	Create(session *model.UserSession) error
	FindByID(id string) (*model.UserSession, error)
	Rotate(id, refreshToken string, expiresAt time.Time) error
	Delete(id string) error
	DeleteByUser(userID int) (int64, error)
}

// AuthService 认证服务
type AuthService struct {
	users    authUserStore
	sessions authSessionStore
	cache    *cache.Cache
	cfg      *config.Config
}

// NewAuthService 创建认证服务
func NewAuthService(users authUserStore, sessions authSessionStore, c *cache.Cache, cfg *config.Config) *AuthService {
	return &AuthService{users: users, sessions: sessions, cache: c, cfg: cfg}
}

// Register 注册：用户名与邮箱都要查重
func (s *AuthService) Register(username, email, password string) (*model.User, error) {
	if existing, err := s.users.FindByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	if existing, err := s.users.FindByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	return s.users.Create(username, email, password)
}

// Login 登录：连续失败达到阈值后锁定一段时间，成功登录清零计数
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ipHash string) (*AuthTokens, *model.User, error) {
	lockKey := cache.Key(cache.PrefixAuthLock, email)

	// 先查锁定状态
	var attempts int64
	if s.cache.Get(ctx, lockKey, &attempts) && attempts >= int64(s.cfg.LoginMaxAttempts) {
		return nil, nil, ErrAccountLocked
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		count, incErr := s.cache.Incr(ctx, lockKey, s.cfg.LoginLockDuration)
		if incErr == nil && count >= int64(s.cfg.LoginMaxAttempts) {
			// 锁定时长从达到阈值的时刻重新起算，而不是从首次失败起算
			s.cache.Expire(ctx, lockKey, s.cfg.LoginLockDuration)
			log.Warn().Str("email", email).Int64("attempts", count).Msg("登录失败次数达到阈值，临时锁定")
		}
		return nil, nil, ErrInvalidCredentials
	}

	if user.Status == model.UserStatusBanned {
		return nil, nil, ErrAccountBanned
	}

	// 登录成功，失败计数清零
	s.cache.Delete(ctx, lockKey)

	tokens, err := s.createSession(user, userAgent, ipHash)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("更新最近登录时间失败")
	}

	return tokens, user, nil
}

// createSession 落库会话并签发令牌对
func (s *AuthService) createSession(user *model.User, userAgent, ipHash string) (*AuthTokens, error) {
	sessionID := uuid.NewString()
	refreshExpiresAt := time.Now().Add(s.cfg.RefreshExpiry)

	refreshToken, err := s.signRefreshToken(user.ID, sessionID, refreshExpiresAt)
	if err != nil {
		return nil, err
	}

	session := &model.UserSession{
		ID:           sessionID,
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		IPHash:       ipHash,
		ExpiresAt:    refreshExpiresAt,
		CreatedAt:    time.Now(),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	return s.buildTokens(user, sessionID, refreshToken, refreshExpiresAt)
}

// Refresh 刷新：校验刷新令牌与会话记录，轮换刷新令牌
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, *model.User, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, nil, ErrTokenInvalid
	}

	session, err := s.sessions.FindByID(claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	// 会话被删除（登出/封禁）或令牌与库中不一致均视为失效
	if session == nil || session.RefreshToken != refreshToken || time.Now().After(session.ExpiresAt) {
		return nil, nil, ErrTokenInvalid
	}

	user, err := s.users.FindByID(session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.Status == model.UserStatusBanned {
		return nil, nil, ErrTokenInvalid
	}

	// 轮换刷新令牌
	refreshExpiresAt := time.Now().Add(s.cfg.RefreshExpiry)
	newRefreshToken, err := s.signRefreshToken(user.ID, session.ID, refreshExpiresAt)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Rotate(session.ID, newRefreshToken, refreshExpiresAt); err != nil {
		return nil, nil, err
	}

	tokens, err := s.buildTokens(user, session.ID, newRefreshToken, refreshExpiresAt)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Logout 登出：删除会话并把访问令牌拉入黑名单直至其自然过期
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims.SessionID != "" {
		if err := s.sessions.Delete(claims.SessionID); err != nil {
			return err
		}
	}
	s.blacklistToken(ctx, claims)
	return nil
}

// LogoutAll 全部登出：按用户批量删除会话
func (s *AuthService) LogoutAll(ctx context.Context, claims *Claims) (int64, error) {
	deleted, err := s.sessions.DeleteByUser(claims.UserID)
	if err != nil {
		return 0, err
	}
	s.blacklistToken(ctx, claims)
	return deleted, nil
}

func (s *AuthService) blacklistToken(ctx context.Context, claims *Claims) {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	s.cache.Set(ctx, cache.Key(cache.PrefixAuthBlack, claims.ID), true, ttl)
}

// VerifyAccess 校验访问令牌：签名、有效期、黑名单
func (s *AuthService) VerifyAccess(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.AccessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.ID != "" {
		blacklisted, err := s.cache.Exists(ctx, cache.Key(cache.PrefixAuthBlack, claims.ID))
		if err == nil && blacklisted {
			return nil, ErrTokenInvalid
		}
	}

	return claims, nil
}

func (s *AuthService) buildTokens(user *model.User, sessionID, refreshToken string, refreshExpiresAt time.Time) (*AuthTokens, error) {
	accessExpiresAt := time.Now().Add(s.cfg.AccessExpiry)
	accessToken, err := s.signAccessToken(user, sessionID, accessExpiresAt)
	if err != nil {
		return nil, err
	}
	return &AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

func (s *AuthService) signAccessToken(user *model.User, sessionID string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("签发访问令牌失败: %w", err)
	}
	return signed, nil
}

func (s *AuthService) signRefreshToken(userID int, sessionID string, expiresAt time.Time) (string, error) {
	claims := &RefreshClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", fmt.Errorf("签发刷新令牌失败: %w", err)
	}
	return signed, nil
}
