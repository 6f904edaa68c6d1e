package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskpilot-go/internal/model"
	"taskpilot-go/internal/repository"
	"taskpilot-go/pkg/hash"
	"taskpilot-go/pkg/token"
)

// TokenPair 是一次签发的 access token 和 refresh token。
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error)
	Logout(ctx context.Context, tokenString string) error
	IsTokenBlacklisted(ctx context.Context, tokenString string) bool
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
	rdb        *redis.Client
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager, rdb *redis.Client) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		rdb:        rdb,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(_ context.Context, name, email, password string) (*model.User, *TokenPair, error) {
	// 1. 检查邮箱是否已被注册
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	// 2. 对密码进行哈希处理，绝不存储明文
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	// 3. 创建新用户
	newUser := &model.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, nil, err
	}

	// 4. 签发 token
	pair, err := s.issueTokens(newUser)
	if err != nil {
		return nil, nil, err
	}
	return newUser, pair, nil
}

// Login 处理用户登录的业务逻辑。
// 无论是用户不存在还是密码错误，都返回同一个错误，不泄露账户是否存在。
func (s *userService) Login(_ context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(_ context.Context, refreshTokenString string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(claims.UserID())
	if err != nil {
		return nil, errors.New("user not found")
	}

	return s.issueTokens(user)
}

// Logout 处理用户登出逻辑，将 token 加入 Redis 黑名单。
// token 的剩余有效期将作为 Redis key 的过期时间。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	return s.rdb.Set(ctx, "blacklist:"+tokenString, "true", expiration).Err()
}

// IsTokenBlacklisted 检查 token 是否在登出黑名单中。
// Redis 不可用时不阻断请求，token 签名验证仍然有效。
func (s *userService) IsTokenBlacklisted(ctx context.Context, tokenString string) bool {
	if s.rdb == nil {
		return false
	}
	exists, err := s.rdb.Exists(ctx, "blacklist:"+tokenString).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// GetByID 根据用户 ID 获取用户详细信息。
func (s *userService) GetByID(_ context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *userService) issueTokens(user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
