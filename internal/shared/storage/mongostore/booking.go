package mongostore

import (
	"context"
	"time"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// BookingStore 实现
// ============================================================================

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	return insertOne(ctx, s.col(ColBookings), b)
}

func (s *Store) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return findOne[model.Booking](ctx, s.col(ColBookings), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	return findMany[model.Booking](ctx, s.col(ColBookings), bson.D{}, newestFirst())
}

func (s *Store) ListBookingsByRenter(ctx context.Context, renterID string) ([]*model.Booking, error) {
	return findMany[model.Booking](ctx, s.col(ColBookings),
		bson.D{{Key: "renter_id", Value: renterID}}, newestFirst())
}

func (s *Store) ListBookingsByProperties(ctx context.Context, propertyIDs []string) ([]*model.Booking, error) {
	if len(propertyIDs) == 0 {
		return []*model.Booking{}, nil
	}
	return findMany[model.Booking](ctx, s.col(ColBookings), idIn("property_id", propertyIDs), newestFirst())
}

// UpdateBookingStatus 以 {_id, version} 为条件的 CAS 写入
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, expectedVersion int64, status model.BookingStatus) error {
	res, err := s.col(ColBookings).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "version", Value: expectedVersion}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "status", Value: status},
				{Key: "updated_at", Value: time.Now().UTC()},
			}},
			{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	existing, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}
