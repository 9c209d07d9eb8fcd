// Package main rentctl 运维命令行
//
// 用法：
//
//	rentctl [--config DIR] <command>
//
// 命令：
//   - seed-admin            按 ADMIN_EMAIL/ADMIN_PASSWORD/ADMIN_NAME 创建或提升管理员
//   - reset-admin-password  将 ADMIN_EMAIL 的密码重置为 ADMIN_PASSWORD
//   - seed-properties       清空房源并写入示例房源
//   - approve-all           批量上架所有待审批房源
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"house-rent/internal/apiserver/auth"
	"house-rent/internal/config"
	"house-rent/internal/shared/infra"
	"house-rent/internal/shared/storage/datasource"
	"house-rent/internal/shared/storage/fixture"
)

type command func(ctx context.Context, cfg *config.Config, inf *infra.Infrastructure) error

var commands = map[string]command{
	"seed-admin":           seedAdmin,
	"reset-admin-password": resetAdminPassword,
	"seed-properties":      seedProperties,
	"approve-all":          approveAll,
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: rentctl [--config DIR] <seed-admin|reset-admin-password|seed-properties|approve-all>\n")
	flag.PrintDefaults()
}

func main() {
	configDir := flag.String("config", "", "配置文件目录")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	run, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 运维命令必须写入真实数据源，不降级
	ds, err := datasource.Open(ctx, datasource.Options{
		Driver: cfg.DatabaseDriver,
		URL:    cfg.DatabaseURL,
		DBName: cfg.DatabaseName,
	})
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.DatabaseDriver, err)
	}
	inf := infra.New(ds.Store, infra.RedisOptions{
		Enabled:    cfg.RedisEnabled,
		URL:        cfg.RedisURL,
		ListingTTL: cfg.Cache.ListingTTL,
	})
	defer inf.Close()

	if err := run(ctx, cfg, inf); err != nil {
		log.Fatalf("[rentctl] %s failed: %v", flag.Arg(0), err)
	}
}

func authService(cfg *config.Config, inf *infra.Infrastructure) *auth.Service {
	return auth.NewService(inf.Storage, auth.Config{JWTSecret: cfg.Auth.JWTSecret, TokenTTL: cfg.TokenTTL})
}

func seedAdmin(ctx context.Context, cfg *config.Config, inf *infra.Infrastructure) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	u, err := authService(cfg, inf).EnsureAdminUser(ctx, auth.AdminAccount{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
		Name:     cfg.Auth.AdminName,
	})
	if err != nil {
		return err
	}
	fmt.Printf("admin user: %s (%s)\n", u.Email, u.ID)
	return nil
}

func resetAdminPassword(ctx context.Context, cfg *config.Config, inf *infra.Infrastructure) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	u, err := authService(cfg, inf).ResetPassword(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	fmt.Printf("password reset for %s\n", u.Email)
	return nil
}

func seedProperties(ctx context.Context, cfg *config.Config, inf *infra.Infrastructure) error {
	res, err := fixture.Seed(ctx, inf.Storage, time.Now().UTC())
	if err != nil {
		return err
	}
	if res.OwnerCreated {
		fmt.Printf("created sample owner %s (password: %s)\n", res.Owner.Email, fixture.SampleOwnerPassword)
	}
	fmt.Printf("cleared %d properties, inserted %d\n", res.Cleared, res.Inserted)
	invalidateListings(ctx, inf)
	return nil
}

func approveAll(ctx context.Context, cfg *config.Config, inf *infra.Infrastructure) error {
	res, err := inf.Storage.ApproveAllPending(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("matched %d, modified %d\n", res.Matched, res.Modified)
	invalidateListings(ctx, inf)
	return nil
}

func invalidateListings(ctx context.Context, inf *infra.Infrastructure) {
	if err := inf.Cache.InvalidateListings(ctx); err != nil {
		log.Printf("[rentctl] WARNING: listing cache not invalidated: %v", err)
	}
}
