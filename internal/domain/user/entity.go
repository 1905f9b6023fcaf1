package user

import (
	"time"
)

// Privilege 用户角色
type Privilege string

const (
	PrivilegeClient Privilege = "client"
	PrivilegeAdmin  Privilege = "admin"
)

// Valid 角色是否在封闭集合内
func (p Privilege) Valid() bool {
	return p == PrivilegeClient || p == PrivilegeAdmin
}

// AllPrivileges 全部已知角色
// 认证中间件未指定角色要求时默认接受全部
func AllPrivileges() []Privilege {
	return []Privilege{PrivilegeClient, PrivilegeAdmin}
}

// AccountStatus 账号状态
type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 邮箱是业务唯一标识,登录与Token subject都用它
// 2. 密码已加密存储（bcrypt）,不应该有方法暴露明文
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID             uint
	Email          string
	Username       string
	HashedPassword string // bcrypt哈希值
	Privilege      Privilege
	Status         AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码,新用户默认client角色、active状态
func NewUser(email, username, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		Privilege:      PrivilegeClient,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsActive 账号是否可用
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Privilege == PrivilegeAdmin
}

// HasPrivilege 角色是否在接受集合内
// 空集合表示不限角色
func (u *User) HasPrivilege(accepted []Privilege) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, p := range accepted {
		if u.Privilege == p {
			return true
		}
	}
	return false
}
