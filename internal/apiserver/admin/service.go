// Package admin 管理员功能：owner 审批、用户列表
package admin

import (
	"context"
	"errors"
	"fmt"

	"house-rent/internal/apiserver/authz"
	"house-rent/internal/shared/apperr"
	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/pkg/logging"
)

const (
	msgUserNotFound    = "User not found"
	msgNotOwner        = "User is not an owner"
	msgAlreadyApproved = "Owner is already approved"
)

// Recorder owner 审批指标
type Recorder interface {
	OwnerApproved()
}

// Service 管理员服务
type Service struct {
	store   storage.UserStore
	logger  *logging.Logger
	metrics Recorder
}

// NewService 创建管理员服务
func NewService(store storage.UserStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default("admin")
	}
	return &Service{store: store, logger: logger}
}

// SetMetrics 设置指标记录器
func (s *Service) SetMetrics(r Recorder) {
	s.metrics = r
}

func requireAdmin(id *authz.Identity) error {
	return authz.Check(id, authz.RequireRole(model.UserRoleAdmin))
}

func publicUsers(users []*model.User) []*model.PublicUser {
	out := make([]*model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// ListPendingOwners 待审批的 owner，按注册时间倒序
func (s *Service) ListPendingOwners(ctx context.Context, id *authz.Identity) ([]*model.PublicUser, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	users, err := s.store.ListPendingOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending owners: %w", err)
	}
	return publicUsers(users), nil
}

// ListUsers 全部用户
func (s *Service) ListUsers(ctx context.Context, id *authz.Identity) ([]*model.PublicUser, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return publicUsers(users), nil
}

// ApproveOwner 审批 owner
//
// 审批是单向的：存储层条件更新只在 role=owner 且未审批时生效，
// 两个并发请求只有一个成功，另一个返回 AlreadyApproved。
func (s *Service) ApproveOwner(ctx context.Context, id *authz.Identity, userID string) (*model.PublicUser, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	switch {
	case u == nil:
		return nil, apperr.NotFound(msgUserNotFound)
	case u.Role != model.UserRoleOwner:
		return nil, apperr.New(apperr.KindInvalidState, msgNotOwner)
	case u.IsApproved:
		return nil, apperr.New(apperr.KindAlreadyApproved, msgAlreadyApproved)
	}

	if err := s.store.ApproveOwner(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.KindAlreadyApproved, msgAlreadyApproved)
		}
		return nil, fmt.Errorf("approve owner: %w", err)
	}

	if s.metrics != nil {
		s.metrics.OwnerApproved()
	}
	s.logger.WithContext(ctx).WithUserID(userID).Info("Owner approved")

	u, err = s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return u.Public(), nil
}
