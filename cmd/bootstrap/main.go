// Package main 初始化数据库结构与管理员账号
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"club-knowledge-api/internal/config"
	"club-knowledge-api/internal/domain/entity"
	"club-knowledge-api/internal/infrastructure/persistence/postgres"
	"club-knowledge-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Database.Postgres.Configured() {
		log.Fatalf("NEON_DB_URL is not set")
	}

	ctx := context.Background()

	deps, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 1. events 表、pgvector 扩展与 users 表
	fmt.Printf("Applying schema (embedding dimension %d)...\n", cfg.Embedding.Dimension)
	if err := postgres.EnsureSchema(ctx, deps.PgClient, cfg.Embedding.Dimension); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	// 2. Milvus 二级索引
	if deps.MilvusRepo != nil {
		if err := deps.MilvusRepo.EnsureEventsCollection(ctx); err != nil {
			log.Fatalf("failed to ensure milvus collection: %v", err)
		}
		fmt.Println("Milvus collection ready.")
	}

	// 3. 首个管理员
	username := os.Getenv("BOOTSTRAP_ADMIN_USERNAME")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if username == "" || password == "" {
		fmt.Println("BOOTSTRAP_ADMIN_USERNAME / BOOTSTRAP_ADMIN_PASSWORD not set, skipping admin user.")
		fmt.Println("Bootstrap completed successfully.")
		return
	}

	existing, err := deps.UserRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("failed to check admin existence: %v", err)
	}
	if existing != nil {
		fmt.Printf("Admin user %s already exists.\n", username)
	} else {
		admin, err := entity.NewUser(username, password)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		if err := deps.UserRepo.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin user: %v", err)
		}
		fmt.Printf("Admin user %s created.\n", username)
	}

	fmt.Println("Bootstrap completed successfully.")
}
