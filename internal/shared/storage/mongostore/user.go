package mongostore

import (
	"context"
	"time"

	"house-rent/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore 实现
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	return findMany[model.User](ctx, s.col(ColUsers), idIn("_id", ids))
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, newestFirst())
}

func (s *Store) ListPendingOwners(ctx context.Context) ([]*model.User, error) {
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{
		{Key: "role", Value: model.UserRoleOwner},
		{Key: "is_approved", Value: false},
	}, newestFirst())
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: time.Now().UTC()},
	})
}

func (s *Store) PromoteToAdmin(ctx context.Context, id string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "role", Value: model.UserRoleAdmin},
		{Key: "is_approved", Value: true},
		{Key: "updated_at", Value: time.Now().UTC()},
	})
}

// ApproveOwner 条件更新：仅匹配未审批的 owner
func (s *Store) ApproveOwner(ctx context.Context, id string) error {
	return updateWhere(ctx, s.col(ColUsers),
		bson.D{
			{Key: "_id", Value: id},
			{Key: "role", Value: model.UserRoleOwner},
			{Key: "is_approved", Value: false},
		},
		bson.D{
			{Key: "is_approved", Value: true},
			{Key: "updated_at", Value: time.Now().UTC()},
		})
}
