package repository

import (
	"context"
	"database/sql"
	"errors"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage"
	"house-rent/internal/shared/storage/dbutil"
)

const bookingColumns = `id, property_id, renter_id, contact_name, contact_email, contact_phone,
	message, preferred_date, preferred_time, status, version, created_at, updated_at`

func scanBooking(row rowScanner) (*model.Booking, error) {
	b := &model.Booking{}
	err := row.Scan(&b.ID, &b.PropertyID, &b.RenterID,
		&b.ContactInfo.Name, &b.ContactInfo.Email, &b.ContactInfo.Phone,
		&b.Message, &b.PreferredDate, &b.PreferredTime, &b.Status, &b.Version,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking 创建预约
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	_, err := s.exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.PropertyID, b.RenterID,
		b.ContactInfo.Name, b.ContactInfo.Email, b.ContactInfo.Phone,
		b.Message, b.PreferredDate, b.PreferredTime, b.Status, b.Version,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetBooking 获取预约
func (s *Store) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings 列出全部预约
func (s *Store) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	return s.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

// ListBookingsByRenter 列出某租客的预约
func (s *Store) ListBookingsByRenter(ctx context.Context, renterID string) ([]*model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE renter_id = $1 ORDER BY created_at DESC`,
		renterID)
}

// ListBookingsByProperties 列出一组房源下的预约
func (s *Store) ListBookingsByProperties(ctx context.Context, propertyIDs []string) ([]*model.Booking, error) {
	if len(propertyIDs) == 0 {
		return []*model.Booking{}, nil
	}
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE property_id IN (`+dbutil.Placeholders(1, len(propertyIDs))+`)
		 ORDER BY created_at DESC`,
		dbutil.StringArgs(propertyIDs)...)
}

// UpdateBookingStatus 乐观锁更新预约状态
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, expectedVersion int64, status model.BookingStatus) error {
	err := s.execByID(ctx,
		`UPDATE bookings SET status = $1, version = version + 1, updated_at = $2
		 WHERE id = $3 AND version = $4`,
		status, now(), id, expectedVersion)
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	// 未命中：区分「不存在」与「版本已变化」
	existing, getErr := s.GetBooking(ctx, id)
	if getErr != nil {
		return getErr
	}
	if existing == nil {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}
