// Package datasource 启动时选择并打开持久化存储
//
// 按 database.driver 选择实现：
//   - mongodb  → mongostore
//   - postgres → repository + driver/postgres
//   - sqlite   → repository + driver/sqlite
//   - memory   → fixture（SQLite 内存库 + 示例数据）
//
// 配置的数据库不可达且允许降级时，退回 fixture 数据源。
package datasource

import (
	"context"
	"fmt"
	"log"

	"house-rent/internal/shared/storage"
	"house-rent/internal/shared/storage/dbutil"
	pgdriver "house-rent/internal/shared/storage/driver/postgres"
	sqlitedriver "house-rent/internal/shared/storage/driver/sqlite"
	"house-rent/internal/shared/storage/fixture"
	"house-rent/internal/shared/storage/mongostore"
	"house-rent/internal/shared/storage/repository"
)

// Options 数据源参数
type Options struct {
	Driver            string
	URL               string
	DBName            string // 仅 MongoDB 使用
	FallbackToFixture bool
}

// Result 打开结果
type Result struct {
	Store    storage.PersistentStore
	Driver   dbutil.DriverType
	Degraded bool // 已降级到 fixture 数据源
}

// Open 打开配置的数据源
func Open(ctx context.Context, opts Options) (*Result, error) {
	driver, ok := dbutil.ParseDriverType(opts.Driver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	store, err := openDriver(ctx, driver, opts)
	if err == nil {
		return &Result{Store: store, Driver: driver}, nil
	}
	if !opts.FallbackToFixture || driver == dbutil.DriverMemory {
		return nil, err
	}

	log.Printf("[datasource] WARNING: %s unavailable (%v), falling back to in-memory sample data", driver, err)
	store, ferr := fixture.NewStore(ctx)
	if ferr != nil {
		return nil, fmt.Errorf("fallback to fixture failed: %w (original error: %v)", ferr, err)
	}
	return &Result{Store: store, Driver: dbutil.DriverMemory, Degraded: true}, nil
}

func openDriver(ctx context.Context, driver dbutil.DriverType, opts Options) (storage.PersistentStore, error) {
	switch driver {
	case dbutil.DriverMongoDB:
		return mongostore.NewStore(ctx, opts.URL, opts.DBName)
	case dbutil.DriverPostgres:
		db, err := pgdriver.Open(opts.URL)
		if err != nil {
			return nil, err
		}
		dialect := pgdriver.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return repository.NewStore(db, dialect), nil
	case dbutil.DriverSQLite:
		db, err := sqlitedriver.Open(opts.URL)
		if err != nil {
			return nil, err
		}
		dialect := sqlitedriver.NewDialect()
		if err := dialect.AutoMigrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		return repository.NewStore(db, dialect), nil
	default:
		return fixture.NewStore(ctx)
	}
}
