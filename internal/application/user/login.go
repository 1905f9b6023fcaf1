package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 设计说明：
// 1. 验证邮箱密码（领域服务）
// 2. 生成JWT Token（subject为邮箱）
// 3. 保存会话到Redis（失败不影响登录,只记日志）
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        UserInfo `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"` // Token有效期（秒）
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	// 1. 验证邮箱密码（停用账号在此被拒绝）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成Token
	token, err := uc.jwtManager.GenerateToken(u.Email, u.Username)
	if err != nil {
		return nil, err
	}

	// 3. 保存会话（审计信息,失败不阻断登录）
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"login_at": time.Now().Unix(),
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, time.Duration(token.ExpiresIn)*time.Second); err != nil {
		slog.Warn("保存会话失败", "user_id", u.ID, "error", err)
	}

	return &LoginResponse{
		User:        *toUserInfo(u),
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
// 删除会话并将Token在剩余有效期内拉黑
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	// 1. 删除会话
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}

	// 2. Token加入黑名单,TTL取Token剩余有效期
	ttl := 0 * time.Second
	if claims, err := uc.jwtManager.ParseToken(accessToken); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, ttl)
}
