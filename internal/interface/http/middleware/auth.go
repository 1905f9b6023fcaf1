package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/response"
)

// Context键
const (
	ctxKeyUser  = "current_user"
	ctxKeyToken = "access_token"
)

// AuthMiddleware JWT认证授权中间件
// 设计说明：
// 1. 认证流程:提取Token → 黑名单检查 → 验签与过期校验 → 解析身份 → 角色校验
// 2. 认证失败一律返回通用401消息,具体原因(过期/格式错误/身份不存在)只记日志
// 3. 角色不满足返回403(身份有效但权限不足,与401语义区分)
// 4. 黑名单查询经熔断器保护:Redis故障时降级跳过(fail-open),验签不受影响
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	userService  user.Service
	sessionStore *redis.SessionStore
	breaker      *circuitbreaker.Breaker
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(
	jwtManager *jwt.Manager,
	userService user.Service,
	sessionStore *redis.SessionStore,
	breaker *circuitbreaker.Breaker,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		userService:  userService,
		sessionStore: sessionStore,
		breaker:      breaker,
	}
}

// Require 要求认证,并限定可接受的角色集合
// 不传角色表示接受全部已知角色(只要求登录)
//
// 使用方式：
//
//	admin := r.Group("/book")
//	admin.POST("/add/", auth.Require(user.PrivilegeAdmin), handler.Add)
func (m *AuthMiddleware) Require(privileges ...user.Privilege) gin.HandlerFunc {
	accepted := privileges
	if len(accepted) == 0 {
		accepted = user.AllPrivileges()
	}

	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		tokenString, ok := extractBearer(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 2. 黑名单检查(经熔断器保护,Redis故障时降级跳过)
		if m.isBlacklisted(c, tokenString) {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 3. 验证Token并解析Claims
		// 失败种类(过期/格式错误)在response.Error内记日志,对外是401
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 4. 解析身份(subject是邮箱)
		// 身份不存在对外同样是通用401,不暴露"用户不存在"
		u, err := m.userService.GetByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			slog.Warn("Token身份解析失败", "subject", claims.Subject, "error", err)
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 5. 停用账号拒绝访问
		if !u.IsActive() {
			response.Error(c, apperrors.ErrInactiveAccount)
			c.Abort()
			return
		}

		// 6. 角色校验(身份有效但角色不在接受集合内 → 403)
		if !u.HasPrivilege(accepted) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		// 7. 将身份注入Context,供后续Handler使用
		c.Set(ctxKeyUser, u)
		c.Set(ctxKeyToken, tokenString)

		c.Next()
	}
}

// extractBearer 解析Authorization头
func extractBearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// isBlacklisted 熔断保护下的黑名单查询
// Redis故障或熔断打开时返回false(fail-open):
// 黑名单只影响已登出Token的提前失效,验签与过期校验仍然有效
func (m *AuthMiddleware) isBlacklisted(c *gin.Context, token string) bool {
	var blacklisted bool
	err := m.breaker.Execute(func() error {
		var err error
		blacklisted, err = m.sessionStore.IsInBlacklist(c.Request.Context(), token)
		return err
	})
	if err != nil {
		metrics.AuthBlacklistSkippedTotal.Inc()
		slog.Warn("黑名单检查降级跳过", "error", err)
		return false
	}
	return blacklisted
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// CurrentUser 从Context获取当前登录用户
// 已通过Require中间件的Handler可安全调用
func CurrentUser(c *gin.Context) *user.User {
	if v, exists := c.Get(ctxKeyUser); exists {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}

// AccessToken 从Context获取当前请求的Token原文(登出时入黑名单用)
func AccessToken(c *gin.Context) string {
	if v, exists := c.Get(ctxKeyToken); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
