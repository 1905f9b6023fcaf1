package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（密码加密、注册校验）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. 注册策略（用户名长度、口令强度、bcrypt cost）由配置显式注入，没有隐藏全局
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, email, username, password, repeatPassword string) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// GetByID 根据ID获取用户
	GetByID(ctx context.Context, id uint) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List 分页查询用户列表
	List(ctx context.Context, p *paginator.Paginator) ([]*User, error)
}

type service struct {
	repo       Repository
	cfg        config.SecurityConfig
	passwordRe *regexp.Regexp
	// weakPassword 口令不达标时返回的错误,提示语来自配置
	weakPassword error
}

// NewService 创建用户服务
// 口令正则在config.Load时已校验合法,这里MustCompile不会panic
func NewService(repo Repository, cfg config.SecurityConfig) Service {
	pattern := cfg.PasswordRegex
	if pattern == "" {
		pattern = config.DefaultPasswordRegex
	}
	weak := error(ErrWeakPassword)
	if cfg.WeakPasswordMessage != "" {
		weak = apperrors.New(apperrors.ErrCodeWeakPassword, cfg.WeakPasswordMessage)
	}
	return &service{
		repo:         repo,
		cfg:          cfg,
		passwordRe:   regexp.MustCompile(pattern),
		weakPassword: weak,
	}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 用户名长度在配置的上下限之间
// 3. 两次密码常数时间比较（避免计时侧信道）
// 4. 密码强度校验（最短长度+配置的复杂度正则）
// 5. 邮箱唯一性先查再插（并发窗口由唯一索引兜底）
// 6. 密码bcrypt加密
func (s *service) Register(ctx context.Context, email, username, password, repeatPassword string) (*User, error) {
	// 1. 邮箱格式校验
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	// 2. 用户名长度校验
	if len(username) < s.cfg.UsernameMinLength || len(username) > s.cfg.UsernameMaxLength {
		return nil, ErrInvalidUsername
	}

	// 3. 两次密码比较
	// 学习要点：用subtle.ConstantTimeCompare而非==，比较耗时与内容无关
	if subtle.ConstantTimeCompare([]byte(password), []byte(repeatPassword)) != 1 {
		return nil, ErrPasswordMismatch
	}

	// 4. 密码强度校验
	if err := s.validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 5. 邮箱重复检查
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailDuplicate
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	// 6. 密码加密
	// bcrypt自动加盐，相同密码每次加密结果不同
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 7. 持久化
	u := NewUser(email, username, string(hashed))
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login 用户登录
// 业务规则：
// 1. 邮箱必须存在,密码必须正确——两种失败对外是同一个笼统错误,
//    不暴露邮箱是否已注册
// 2. 停用账号不允许登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}

	if !u.IsActive() {
		return nil, ErrInactiveAccount
	}

	return u, nil
}

// GetByID 根据ID获取用户
func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByEmail 根据邮箱获取用户
func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// List 分页查询用户列表
func (s *service) List(ctx context.Context, p *paginator.Paginator) ([]*User, error) {
	return s.repo.List(ctx, p)
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// isValidEmail 邮箱格式校验
// 简单的正则校验，生产环境可使用更严格的RFC 5322标准
func isValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// validatePasswordStrength 密码强度校验
// 规则：不短于配置下限,且匹配配置的复杂度正则(默认要求字母+数字)
func (s *service) validatePasswordStrength(password string) error {
	if len(password) < s.cfg.PasswordMinLength {
		return s.weakPassword
	}
	if !s.passwordRe.MatchString(password) {
		return s.weakPassword
	}
	return nil
}
