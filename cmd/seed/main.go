package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/library-catalog/config"
	"github.com/oksasatya/library-catalog/internal/container"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

// seed creates the bootstrap admin, or promotes the account that already
// uses SEED_ADMIN_EMAIL.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.SeedAdminEmail == "" {
		log.Fatal("SEED_ADMIN_EMAIL is required")
	}
	if !cfg.PersistentStore() {
		log.Fatalf("STORE_DRIVER=%s does not persist users; set SEED_ADMIN_* on the API process instead", cfg.StoreDriver)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)

	// integrations are not needed to write a user
	cfg.RedisAddr, cfg.ElasticsearchAddrs, cfg.GCSBucket, cfg.MailSendEnabled = "", "", "", false

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer c.Close()

	u, created, err := c.SeedAdmin(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if created {
		fmt.Printf("created admin: id=%s email=%s\n", u.ID, u.Email)
		return
	}
	fmt.Printf("admin ensured: id=%s email=%s\n", u.ID, u.Email)
}
