package service

import "errors"

// 服务层哨兵错误，由接口层映射为对应的 HTTP 状态码
var (
	ErrNotFound           = errors.New("资源不存在")
	ErrConflict           = errors.New("资源冲突")
	ErrCategoryInUse      = errors.New("分类仍被剧目引用，无法删除")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAccountLocked      = errors.New("登录失败次数过多，账号已临时锁定")
	ErrAccountBanned      = errors.New("账号已被封禁")
	ErrTokenInvalid       = errors.New("令牌无效或已过期")
	ErrUsernameTaken      = errors.New("用户名已被占用")
	ErrEmailTaken         = errors.New("邮箱已被注册")
)
