package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// fakeRepo 内存仓储,按邮箱索引
type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (r *fakeRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.users[u.Email]; ok {
		return ErrEmailDuplicate
	}
	u.ID = uint(len(r.users) + 1)
	r.users[u.Email] = u
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) List(ctx context.Context, p *paginator.Paginator) ([]*User, error) {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		UsernameMinLength: 4,
		UsernameMaxLength: 32,
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.MinCost, // 测试用最低cost,避免拖慢用例
	}
}

func TestService_Register(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testSecurityConfig())

	u, err := svc.Register(context.Background(), "alice@example.com", "alice01", "passw0rd", "passw0rd")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, PrivilegeClient, u.Privilege)
	assert.Equal(t, StatusActive, u.Status)
	// 密码不以明文存储
	assert.NotEqual(t, "passw0rd", u.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("passw0rd")))
}

func TestService_Register_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), testSecurityConfig())
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		username string
		password string
		repeat   string
		wantErr  error
	}{
		{"邮箱格式错误", "not-an-email", "alice01", "passw0rd", "passw0rd", ErrInvalidEmail},
		{"用户名过短", "a@b.com", "ab", "passw0rd", "passw0rd", ErrInvalidUsername},
		{"两次密码不一致", "a@b.com", "alice01", "passw0rd", "other0ne", ErrPasswordMismatch},
		{"密码过短", "a@b.com", "alice01", "pw1", "pw1", ErrWeakPassword},
		{"密码缺数字", "a@b.com", "alice01", "passwords", "passwords", ErrWeakPassword},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Register(ctx, c.email, c.username, c.password, c.repeat)
			assert.ErrorIs(t, err, c.wantErr)
		})
	}
}

func TestService_Register_CustomPasswordPolicy(t *testing.T) {
	// 口令正则与提示语来自配置,而非写死在代码里
	cfg := testSecurityConfig()
	cfg.PasswordRegex = `[!@#$%]`
	cfg.WeakPasswordMessage = "密码必须包含特殊字符"
	svc := NewService(newFakeRepo(), cfg)
	ctx := context.Background()

	// 默认策略下合法的密码,被自定义正则拒绝,提示语取自配置
	_, err := svc.Register(ctx, "eve@example.com", "eve0001", "passw0rd", "passw0rd")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Contains(t, err.Error(), "密码必须包含特殊字符")

	_, err = svc.Register(ctx, "eve@example.com", "eve0001", "passw0rd!", "passw0rd!")
	assert.NoError(t, err)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testSecurityConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "bob0001", "passw0rd", "passw0rd")
	require.NoError(t, err)

	// 校验失败时不落库
	_, err = svc.Register(ctx, "bob@example.com", "bob0002", "passw0rd", "passw0rd")
	assert.ErrorIs(t, err, ErrEmailDuplicate)
	assert.Len(t, repo.users, 1)
}

func TestService_Login(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testSecurityConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", "carol01", "passw0rd", "passw0rd")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "carol@example.com", "passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", u.Email)

	// 密码错误返回笼统错误,不泄露细节
	_, err = svc.Login(ctx, "carol@example.com", "wrongpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 未注册邮箱与密码错误对外不可区分:同一个错误,同样映射到400
	_, err = svc.Login(ctx, "nobody@example.com", "passw0rd")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 400, apperrors.HTTPStatus(apperrors.GetAppError(err).Code))
}

func TestService_Login_InactiveAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testSecurityConfig())
	ctx := context.Background()

	u, err := svc.Register(ctx, "dave@example.com", "dave001", "passw0rd", "passw0rd")
	require.NoError(t, err)

	u.Status = StatusInactive
	_, err = svc.Login(ctx, "dave@example.com", "passw0rd")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestUser_HasPrivilege(t *testing.T) {
	u := &User{Privilege: PrivilegeClient}

	// 空集合表示不限角色
	assert.True(t, u.HasPrivilege(nil))
	assert.True(t, u.HasPrivilege(AllPrivileges()))
	assert.True(t, u.HasPrivilege([]Privilege{PrivilegeClient}))
	assert.False(t, u.HasPrivilege([]Privilege{PrivilegeAdmin}))
}
