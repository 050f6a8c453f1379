package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"
	"go-studioadmin/internal/pkg/resource"
	redisrepo "go-studioadmin/internal/repository/redis"
	"go-studioadmin/internal/security/jwt"
	"go-studioadmin/pkg/crypto"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled or not staff")
)

// AuthService signs staff users in and out of the admin panel.
type AuthService struct {
	DB        *gorm.DB
	Users     *resource.Service[model.User, *model.User]
	JWT       *jwt.Manager
	Redis     *redisrepo.Client
	JTIPrefix string
}

func NewAuthService(res *Resources, j *jwt.Manager, r *redisrepo.Client, jtiPrefix string) *AuthService {
	if jtiPrefix == "" {
		jtiPrefix = "jwt:jti:"
	}
	return &AuthService{DB: res.DB, Users: res.Users, JWT: j, Redis: r, JTIPrefix: jtiPrefix}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var user model.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsStaff() {
		return nil, ErrUserDisabled
	}
	issued, err := s.JWT.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := s.Redis.SetTTL(ctx, s.JTIPrefix+issued.JTI, user.ID, s.JWT.ExpireDuration()); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	err = s.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error
	if err != nil {
		logging.FromContext(ctx).Warn("auth_last_login_update_failed", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		s.Users.Invalidate(ctx)
	}
	return &LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: &user}, nil
}

// Logout drops the token's JTI so it stops authenticating immediately.
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	if jti == "" || s.Redis == nil {
		return nil
	}
	return s.Redis.Client.Del(ctx, s.JTIPrefix+jti).Err()
}

// EnsureBootstrapAdmin creates the first admin account when no admin exists yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &model.User{Name: "Administrator", Email: &email, Role: model.RoleAdmin, IsActive: true, PasswordHash: hash}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return false, err
	}
	return true, nil
}
