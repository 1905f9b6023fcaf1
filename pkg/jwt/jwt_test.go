package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", 2*time.Hour)

	token, err := m.GenerateToken("alice@example.com", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "bearer", token.TokenType)
	require.Equal(t, int64(7200), token.ExpiresIn)

	claims, err := m.ParseToken(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.Equal(t, "alice", claims.Name)

	// exp = iat + 有效期
	require.Equal(t,
		claims.IssuedAt.Add(2*time.Hour).Unix(),
		claims.ExpiresAt.Unix())
}

// TestParseToken_Expired 过期Token返回的错误种类可供日志区分
func TestParseToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("bob@example.com", "bob")
	require.NoError(t, err)

	_, err = m.ParseToken(token.AccessToken)
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

// TestParseToken_WrongSecret 签名不匹配视为无效Token
func TestParseToken_WrongSecret(t *testing.T) {
	m := NewManager("secret-a", time.Hour)
	other := NewManager("secret-b", time.Hour)

	token, err := m.GenerateToken("carol@example.com", "carol")
	require.NoError(t, err)

	_, err = other.ParseToken(token.AccessToken)
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.Equal(t, apperrors.ErrCodeInvalidToken, appErr.Code)
}

// TestParseToken_Malformed 非JWT字符串
func TestParseToken_Malformed(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.ParseToken("not-a-token")
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.Equal(t, apperrors.ErrCodeInvalidToken, appErr.Code)
}
