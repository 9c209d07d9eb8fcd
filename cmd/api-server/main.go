// Package main API Server 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"house-rent/internal/apiserver/auth"
	"house-rent/internal/apiserver/booking"
	"house-rent/internal/apiserver/docs"
	"house-rent/internal/apiserver/server"
	"house-rent/internal/config"
	"house-rent/internal/shared/infra"
	"house-rent/internal/shared/storage/datasource"
	"house-rent/pkg/logging"
)

func main() {
	configDir := flag.String("config", "", "配置文件目录")
	flag.Parse()
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	ctx := context.Background()

	// 初始化持久化存储（不可达时按配置降级到示例数据）
	ds, err := datasource.Open(ctx, datasource.Options{
		Driver:            cfg.DatabaseDriver,
		URL:               cfg.DatabaseURL,
		DBName:            cfg.DatabaseName,
		FallbackToFixture: cfg.FallbackToFixture,
	})
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.DatabaseDriver, err)
	}
	if ds.Degraded {
		log.Println("Running on in-memory sample data (degraded mode)")
	} else {
		log.Printf("Connected to %s", ds.Driver)
	}

	// 初始化 Redis（列表缓存、预约事件流），不可达时退化
	inf := infra.New(ds.Store, infra.RedisOptions{
		Enabled:    cfg.RedisEnabled,
		URL:        cfg.RedisURL,
		ListingTTL: cfg.Cache.ListingTTL,
	})
	defer inf.Close()
	if inf.RedisConnected() {
		log.Println("Connected to Redis")
	}

	apiDocs, err := docs.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load API document: %v", err)
	}

	h := server.NewHandler(inf.Storage, inf.Cache, inf.EventBus, apiDocs, server.Options{
		Production: cfg.IsProduction(),
		Auth:       auth.Config{JWTSecret: cfg.Auth.JWTSecret, TokenTTL: cfg.TokenTTL},
		Booking:    booking.Options{StrictTransitions: cfg.Booking.StrictTransitions},
		Logger:     logging.Default("api"),
	})

	// 确保管理员账号存在
	admin, err := h.Auth().EnsureAdminUser(ctx, auth.AdminAccount{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
		Name:     cfg.Auth.AdminName,
	})
	switch {
	case err != nil:
		log.Printf("[auth] WARNING: failed to ensure admin user: %v", err)
	case admin == nil:
		log.Println("[auth] ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
