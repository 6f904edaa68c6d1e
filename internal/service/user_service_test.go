package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskpilot-go/internal/model"
	"taskpilot-go/pkg/hash"
	"taskpilot-go/pkg/token"
)

// fakeUserRepo 以内存映射模拟 UserRepository。
type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*model.User{}, byID: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	copied := *user
	r.byEmail[user.Email] = &copied
	r.byID[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newUserServiceForTest() (UserService, *fakeUserRepo, *token.JWTManager) {
	repo := newFakeUserRepo()
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	return NewUserService(repo, jwtManager, nil), repo, jwtManager
}

func TestRegister(t *testing.T) {
	svc, repo, jwtManager := newUserServiceForTest()

	user, pair, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret-pass")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	// 密码以 bcrypt 哈希存储，绝不是明文
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.True(t, hash.CheckPasswordHash("s3cret-pass", user.Password))

	// 签发的 access token 可以验证回该用户身份
	claims, err := jwtManager.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.NotEmpty(t, pair.RefreshToken)

	assert.Len(t, repo.byID, 1)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newUserServiceForTest()
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Impostor", "alice@example.com", "other-pass")

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newUserServiceForTest()
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	user, pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLogin_UniformError(t *testing.T) {
	svc, _, _ := newUserServiceForTest()
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	// 密码错误与账户不存在返回同一个错误，不泄露账户是否存在
	_, _, wrongPassword := svc.Login(ctx, "alice@example.com", "bad-pass")
	_, _, noSuchUser := svc.Login(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, noSuchUser, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc, _, jwtManager := newUserServiceForTest()
	ctx := context.Background()
	user, pair, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	newPair, err := svc.RefreshToken(ctx, pair.RefreshToken)

	require.NoError(t, err)
	claims, err := jwtManager.VerifyToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
}

func TestRefreshToken_Invalid(t *testing.T) {
	svc, _, _ := newUserServiceForTest()

	_, err := svc.RefreshToken(context.Background(), "garbage")

	assert.Error(t, err)
}

func TestIsTokenBlacklisted_NoRedis(t *testing.T) {
	svc, _, _ := newUserServiceForTest()

	// Redis 不可用时认证不被阻断
	assert.False(t, svc.IsTokenBlacklisted(context.Background(), "any-token"))
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newUserServiceForTest()
	ctx := context.Background()
	user, _, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = svc.GetByID(ctx, "missing")
	assert.Error(t, err)
}
