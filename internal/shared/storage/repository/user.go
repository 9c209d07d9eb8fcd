package repository

import (
	"context"
	"database/sql"
	"errors"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage/dbutil"
)

const userColumns = `id, name, email, password_hash, role, is_approved, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsApproved, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) getUser(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser 创建用户
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Role, user.IsApproved, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUsersByIDs 批量查找用户（关联查询用）
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+dbutil.Placeholders(1, len(ids))+`)`,
		dbutil.StringArgs(ids)...)
}

// ListUsers 列出所有用户
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

// ListPendingOwners 列出待审批的 owner
func (s *Store) ListPendingOwners(ctx context.Context) ([]*model.User, error) {
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND is_approved = $2 ORDER BY created_at DESC`,
		model.UserRoleOwner, false)
}

// UpdateUserPassword 更新用户密码
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.execByID(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, now(), id)
}

// PromoteToAdmin 将用户提升为 admin
func (s *Store) PromoteToAdmin(ctx context.Context, id string) error {
	return s.execByID(ctx,
		`UPDATE users SET role = $1, is_approved = $2, updated_at = $3 WHERE id = $4`,
		model.UserRoleAdmin, true, now(), id)
}

// ApproveOwner 审批 owner（单向：仅 false → true）
func (s *Store) ApproveOwner(ctx context.Context, id string) error {
	return s.execByID(ctx,
		`UPDATE users SET is_approved = $1, updated_at = $2
		 WHERE id = $3 AND role = $4 AND is_approved = $5`,
		true, now(), id, model.UserRoleOwner, false)
}
