package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// SessionStore 会话存储
// 设计说明：
// 1. 使用Redis存储用户登录会话
// 2. 支持JWT黑名单（登出后的Token在剩余有效期内拒绝）
// 3. Key设计：session:{user_id}、blacklist:{token}
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SaveSession 保存用户会话（登录时间等审计信息）
// 过期时间与Access Token一致
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	key := fmt.Sprintf("session:%d", userID)

	if err := s.client.HMSet(ctx, key, sessionData).Err(); err != nil {
		return apperrors.Wrap(err, "保存会话失败")
	}
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "设置会话过期时间失败")
	}
	return nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	key := fmt.Sprintf("session:%d", userID)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return apperrors.Wrap(err, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
// 使用场景：用户登出、Token泄露后强制失效
// ttl取Token剩余有效期,过期后自动删除,无需手动清理
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token已过期,无需入黑名单
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", token)

	if err := s.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}
	return exists > 0, nil
}
