package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Manager JWT管理器
// 设计说明：
// 1. 签名算法固定HS256+共享密钥
// 2. Token载荷：sub=邮箱(身份唯一标识)、iat=签发时间、name=用户名
// 3. exp在序列化时刻由iat+配置的有效期推算
type Manager struct {
	secret string        // JWT签名密钥
	expire time.Duration // Token有效期
}

// NewManager 创建JWT管理器
func NewManager(secret string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expire: expire,
	}
}

// Claims 自定义JWT Claims
// 嵌入jwt.RegisteredClaims获取标准字段（sub、iat、exp等）
type Claims struct {
	Name string `json:"name"` // 用户显示名
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // 有效期（秒）
}

// GenerateToken 签发Token
// 参数：
// - email: 用户邮箱（写入sub声明，作为身份解析依据）
// - name: 用户名（写入自定义name声明）
func (m *Manager) GenerateToken(email, name string) (*Token, error) {
	now := time.Now()

	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Token失败")
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(m.expire.Seconds()),
	}, nil
}

// ParseToken 解析并验证Token
// 验证内容：签名、过期时间(exp)
// 失败种类（过期/格式非法/声明非法）在返回错误中区分，供日志使用；
// 对外响应统一为401，不暴露具体原因
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法，防止alg=none等降级攻击
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, &apperrors.AppError{Code: apperrors.ErrCodeInvalidToken, Message: "无效的Token", Err: err}
		default:
			return nil, &apperrors.AppError{Code: apperrors.ErrCodeInvalidToken, Message: "无效的Token", Err: err}
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
