package mongostore

import (
	"context"
	"time"

	"house-rent/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// PropertyStore 实现
// ============================================================================

func (s *Store) CreateProperty(ctx context.Context, p *model.Property) error {
	return insertOne(ctx, s.col(ColProperties), p)
}

func (s *Store) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	return findOne[model.Property](ctx, s.col(ColProperties), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetPropertiesByIDs(ctx context.Context, ids []string) ([]*model.Property, error) {
	if len(ids) == 0 {
		return []*model.Property{}, nil
	}
	return findMany[model.Property](ctx, s.col(ColProperties), idIn("_id", ids))
}

func (s *Store) ListVisibleProperties(ctx context.Context) ([]*model.Property, error) {
	return findMany[model.Property](ctx, s.col(ColProperties), bson.D{
		{Key: "is_approved", Value: true},
		{Key: "status", Value: model.PropertyStatusAvailable},
	}, newestFirst())
}

func (s *Store) ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	return findMany[model.Property](ctx, s.col(ColProperties),
		bson.D{{Key: "owner_id", Value: ownerID}}, newestFirst())
}

func (s *Store) ListProperties(ctx context.Context) ([]*model.Property, error) {
	return findMany[model.Property](ctx, s.col(ColProperties), bson.D{}, newestFirst())
}

// UpdateProperty 覆盖可变字段，owner_id 与 created_at 不参与更新
func (s *Store) UpdateProperty(ctx context.Context, p *model.Property) error {
	return updateFields(ctx, s.col(ColProperties), p.ID, bson.D{
		{Key: "title", Value: p.Title},
		{Key: "description", Value: p.Description},
		{Key: "address", Value: p.Address},
		{Key: "location", Value: p.Location},
		{Key: "price", Value: p.Price},
		{Key: "bedrooms", Value: p.Bedrooms},
		{Key: "bathrooms", Value: p.Bathrooms},
		{Key: "area", Value: p.Area},
		{Key: "photos", Value: p.Photos},
		{Key: "features", Value: p.Features},
		{Key: "property_type", Value: p.PropertyType},
		{Key: "status", Value: p.Status},
		{Key: "is_approved", Value: p.IsApproved},
		{Key: "updated_at", Value: p.UpdatedAt},
	})
}

func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColProperties), id)
}

func (s *Store) DeleteAllProperties(ctx context.Context) (int64, error) {
	res, err := s.col(ColProperties).DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, wrapError(err)
	}
	return res.DeletedCount, nil
}

// ApproveAllPending 批量上架：未审批或状态非 available 的房源
func (s *Store) ApproveAllPending(ctx context.Context) (*model.ApproveResult, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "is_approved", Value: false}},
		bson.D{{Key: "status", Value: bson.D{{Key: "$ne", Value: model.PropertyStatusAvailable}}}},
	}}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_approved", Value: true},
		{Key: "status", Value: model.PropertyStatusAvailable},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	res, err := s.col(ColProperties).UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, wrapError(err)
	}
	return &model.ApproveResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}
