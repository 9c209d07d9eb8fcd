package repository

import (
	"context"
	"database/sql"
	"errors"

	"house-rent/internal/shared/model"
	"house-rent/internal/shared/storage/dbutil"
)

const propertyColumns = `id, title, description, address, city, state, zip_code, price,
	bedrooms, bathrooms, area, photos, features, property_type, status, is_approved,
	owner_id, created_at, updated_at`

func scanProperty(row rowScanner) (*model.Property, error) {
	p := &model.Property{}
	var photos, features string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address,
		&p.Location.City, &p.Location.State, &p.Location.ZipCode, &p.Price,
		&p.Bedrooms, &p.Bathrooms, &p.Area, &photos, &features,
		&p.PropertyType, &p.Status, &p.IsApproved,
		&p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Photos = unmarshalStrings(photos)
	p.Features = unmarshalStrings(features)
	return p, nil
}

func (s *Store) queryProperties(ctx context.Context, query string, args ...interface{}) ([]*model.Property, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := []*model.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// CreateProperty 创建房源
func (s *Store) CreateProperty(ctx context.Context, p *model.Property) error {
	_, err := s.exec(ctx,
		`INSERT INTO properties (`+propertyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.ID, p.Title, p.Description, p.Address,
		p.Location.City, p.Location.State, p.Location.ZipCode, p.Price,
		p.Bedrooms, p.Bathrooms, p.Area, marshalStrings(p.Photos), marshalStrings(p.Features),
		p.PropertyType, p.Status, p.IsApproved,
		p.OwnerID, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetProperty 获取房源
func (s *Store) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	p, err := scanProperty(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+propertyColumns+` FROM properties WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPropertiesByIDs 批量获取房源（关联查询用）
func (s *Store) GetPropertiesByIDs(ctx context.Context, ids []string) ([]*model.Property, error) {
	if len(ids) == 0 {
		return []*model.Property{}, nil
	}
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id IN (`+dbutil.Placeholders(1, len(ids))+`)`,
		dbutil.StringArgs(ids)...)
}

// ListVisibleProperties 列出对外可见的房源
func (s *Store) ListVisibleProperties(ctx context.Context) ([]*model.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties
		 WHERE is_approved = $1 AND status = $2 ORDER BY created_at DESC`,
		true, model.PropertyStatusAvailable)
}

// ListPropertiesByOwner 列出某 owner 的全部房源
func (s *Store) ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

// ListProperties 列出全部房源
func (s *Store) ListProperties(ctx context.Context) ([]*model.Property, error) {
	return s.queryProperties(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC`)
}

// UpdateProperty 更新房源可变字段
func (s *Store) UpdateProperty(ctx context.Context, p *model.Property) error {
	return s.execByID(ctx,
		`UPDATE properties SET title = $1, description = $2, address = $3, city = $4, state = $5,
		 zip_code = $6, price = $7, bedrooms = $8, bathrooms = $9, area = $10, photos = $11,
		 features = $12, property_type = $13, status = $14, is_approved = $15, updated_at = $16
		 WHERE id = $17`,
		p.Title, p.Description, p.Address, p.Location.City, p.Location.State,
		p.Location.ZipCode, p.Price, p.Bedrooms, p.Bathrooms, p.Area, marshalStrings(p.Photos),
		marshalStrings(p.Features), p.PropertyType, p.Status, p.IsApproved, p.UpdatedAt,
		p.ID,
	)
}

// DeleteProperty 删除房源
func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	return s.execByID(ctx, `DELETE FROM properties WHERE id = $1`, id)
}

// DeleteAllProperties 清空房源（示例数据脚本使用）
func (s *Store) DeleteAllProperties(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM properties`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ApproveAllPending 批量上架所有不满足可见条件的房源
// 单条 UPDATE 语句，命中即修改，matched 与 modified 相同
func (s *Store) ApproveAllPending(ctx context.Context) (*model.ApproveResult, error) {
	res, err := s.exec(ctx,
		`UPDATE properties SET is_approved = $1, status = $2, updated_at = $3
		 WHERE is_approved = $4 OR status <> $5`,
		true, model.PropertyStatusAvailable, now(), false, model.PropertyStatusAvailable)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &model.ApproveResult{Matched: n, Modified: n}, nil
}
