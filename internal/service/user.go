package service

import (
	"github.com/user/shortdrama/internal/model"
)

type userStore interface {
	FindByID(id int) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	UpdatePassword(userID int, newPassword string) error
	UpdateProfile(userID int, profile model.Profile) error
	UpdateNotifications(userID int, prefs model.NotificationPrefs) error
	UpdateStatus(userID int, status string) error
	UpdateRole(userID int, role string) error
	List(page, limit int, search, status string) ([]model.User, int64, error)
	Count() (int64, error)
}

type userSessionCleaner interface {
	DeleteByUser(userID int) (int64, error)
}

// UserService 用户资料与管理服务
type UserService struct {
	users    userStore
	sessions userSessionCleaner
}

// NewUserService 创建用户服务
func NewUserService(users userStore, sessions userSessionCleaner) *UserService {
	return &UserService{users: users, sessions: sessions}
}

// Get 查找用户
func (s *UserService) Get(id int) (*model.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile 更新资料子文档
func (s *UserService) UpdateProfile(userID int, profile model.Profile) (*model.User, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateProfile(userID, profile); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// UpdateNotifications 更新通知偏好
func (s *UserService) UpdateNotifications(userID int, prefs model.NotificationPrefs) (*model.User, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateNotifications(userID, prefs); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// ChangePassword 修改密码，需验证旧密码
func (s *UserService) ChangePassword(userID int, oldPassword, newPassword string) error {
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if !s.users.CheckPassword(user, oldPassword) {
		return ErrInvalidCredentials
	}
	return s.users.UpdatePassword(userID, newPassword)
}

// List 管理端分页用户列表，支持用户名/邮箱搜索与状态过滤
func (s *UserService) List(page, limit int, search, status string) ([]model.User, int64, error) {
	return s.users.List(page, limit, search, status)
}

// UpdateStatus 管理端更新用户状态。封禁时一并失效其全部会话
func (s *UserService) UpdateStatus(userID int, status string) (*model.User, error) {
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateStatus(userID, status); err != nil {
		return nil, err
	}
	if status == model.UserStatusBanned {
		if _, err := s.sessions.DeleteByUser(userID); err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// UpdateRole 管理端更新用户角色
func (s *UserService) UpdateRole(userID int, role string) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleAdmin && role != model.RoleModerator {
		return nil, ErrConflict
	}
	if _, err := s.Get(userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(userID, role); err != nil {
		return nil, err
	}
	return s.Get(userID)
}

// IsUsernameAvailable 用户名是否可用
func (s *UserService) IsUsernameAvailable(username string) (bool, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// IsEmailAvailable 邮箱是否可用
func (s *UserService) IsEmailAvailable(email string) (bool, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

// Count 用户总数
func (s *UserService) Count() (int64, error) {
	return s.users.Count()
}
