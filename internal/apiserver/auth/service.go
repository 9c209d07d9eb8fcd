package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/internal/shared/validate"
)

// 对外错误消息
const (
	msgAdminRegistration  = "Cannot register as admin directly"
	msgInvalidRole        = "Invalid role. Must be either renter or owner"
	msgUserExists         = "User already exists"
	msgMissingCredentials = "Please provide an email and password"
	msgInvalidCredentials = "Invalid credentials"
	msgNoToken            = "Not authorized to access this route - no token provided"
	msgInvalidToken       = "Invalid token"
	msgUserNotFound       = "User not found"
)

// Service 身份认证服务
type Service struct {
	store storage.UserStore
	cfg   Config
	now   func() time.Time
}

// NewService 创建认证服务
func NewService(store storage.UserStore, cfg Config) *Service {
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

// Session 登录/注册结果
type Session struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

// NormalizeEmail 邮箱统一小写并去除首尾空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 注册 renter 或 owner
//
// owner 注册后 isApproved=false，需管理员审批才能发布房源。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	role := model.UserRoleRenter
	if in.Role != "" {
		r := model.UserRole(in.Role)
		if r == model.UserRoleAdmin {
			return nil, apperr.New(apperr.KindInvalidRole, msgAdminRegistration)
		}
		if !r.Registrable() {
			return nil, apperr.New(apperr.KindInvalidRole, msgInvalidRole)
		}
		role = r
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindDuplicateEmail, msgUserExists)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           model.NewID(model.IDPrefixUser),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   role != model.UserRoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.KindDuplicateEmail, msgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("[auth] User registered: %s (%s, role=%s)", user.Email, user.ID, user.Role)
	return s.session(user)
}

// Authenticate 邮箱密码登录
//
// 用户不存在与密码错误返回同一错误，避免枚举邮箱。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation(msgMissingCredentials)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, apperr.New(apperr.KindInvalidCredentials, msgInvalidCredentials)
	}

	log.Printf("[auth] User logged in: %s", user.Email)
	return s.session(user)
}

// CurrentUser 解析 Bearer Token 并加载存储中的用户
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated(msgNoToken)
	}
	claims, err := ParseToken(s.cfg, token)
	if err != nil {
		log.Printf("[auth] token parse error: %v", err)
		return nil, apperr.Unauthenticated(msgInvalidToken)
	}

	user, err := s.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.Unauthenticated(msgUserNotFound)
	}
	return user, nil
}

// CurrentIdentity 同 CurrentUser，返回授权用的 Identity
func (s *Service) CurrentIdentity(ctx context.Context, token string) (*authz.Identity, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return authz.IdentityOf(user), nil
}

// GetUser 按 ID 读取用户
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return user, nil
}

func (s *Service) session(user *model.User) (*Session, error) {
	token, err := GenerateToken(s.cfg, user.ID, user.Email, string(user.Role), s.now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, User: user.Public()}, nil
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// AdminAccount 管理员引导参数（来自 ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME）
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// EnsureAdminUser 确保管理员用户存在（启动时和 rentctl seed-admin 调用）
//
// 邮箱已存在但不是 admin 时提升为 admin；未配置邮箱或密码时跳过，返回 nil。
func (s *Service) EnsureAdminUser(ctx context.Context, acc AdminAccount) (*model.User, error) {
	email := NormalizeEmail(acc.Email)
	if email == "" || acc.Password == "" {
		return nil, nil
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if existing.Role != model.UserRoleAdmin {
			log.Printf("[auth] Upgrading user %s to admin role", email)
			if err := s.store.PromoteToAdmin(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("promote admin user: %w", err)
			}
			existing.Role = model.UserRoleAdmin
			existing.IsApproved = true
			return existing, nil
		}
		log.Printf("[auth] Admin user already exists: %s (%s)", email, existing.ID)
		return existing, nil
	}

	hash, err := HashPassword(acc.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	name := acc.Name
	if name == "" {
		name = "Admin"
	}
	now := s.now().UTC()
	user := &model.User{
		ID:           model.NewID(model.IDPrefixUser),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		IsApproved:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", email, user.ID)
	return user, nil
}

// ResetPassword 重置指定邮箱的密码（rentctl reset-admin-password）
func (s *Service) ResetPassword(ctx context.Context, email, password string) (*model.User, error) {
	if len(password) < 6 {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return nil, apperr.FromStorage(err, msgUserNotFound)
	}
	log.Printf("[auth] Password reset for %s (%s)", user.Email, user.ID)
	return user, nil
}
