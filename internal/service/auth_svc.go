package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== AuthService ====================

// AuthService 认证服务：注册、登录、资料与密码管理
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// ==================== 注册 / 登录 ====================

// Register 注册新用户，邮箱唯一
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, errs.Conflictf("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Internal("failed to check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashed),
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     model.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 唯一索引兜底并发注册
		return nil, errs.Conflictf("email already registered")
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, errs.Internal("failed to issue token", err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// Login 登录，凭证错误统一返回 invalid credentials
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Authf("invalid credentials")
		}
		return nil, errs.Internal("failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, errs.Authf("invalid credentials")
	}

	token, err := middleware.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, errs.Internal("failed to issue token", err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}

// ==================== 资料 ====================

// GetProfile 获取用户资料
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("user not found")
		}
		return nil, errs.Internal("failed to load user", err)
	}
	return user, nil
}

// UpdateProfile 更新资料，只更新提交的字段
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*model.User, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errs.Validationf("name must not be empty")
		}
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, errs.Internal("failed to update profile", err)
		}
	}
	return s.GetProfile(ctx, userID)
}

// UpdateAvatar 更新头像地址
func (s *AuthService) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*model.User, error) {
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"avatar": avatarURL}); err != nil {
		return nil, errs.Internal("failed to update avatar", err)
	}
	return s.GetProfile(ctx, userID)
}

// ChangePassword 修改密码，必须先通过当前密码校验
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return errs.Authf("current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errs.Internal("failed to hash password", err)
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"password": string(hashed)}); err != nil {
		return errs.Internal("failed to change password", err)
	}
	return nil
}

// ==================== 管理员引导 ====================

// EnsureAdmin 启动时按邮箱幂等创建管理员账号
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errs.Internal("failed to hash admin password", err)
	}
	if name == "" {
		name = "Admin"
	}
	return s.userRepo.EnsureAdmin(ctx, name, normalizeEmail(email), string(hashed))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
