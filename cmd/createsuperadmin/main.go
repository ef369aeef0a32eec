package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/you/campusauth/internal/app"
	"github.com/you/campusauth/internal/config"
	"github.com/you/campusauth/internal/infrastructure/auth"
	"github.com/you/campusauth/internal/infrastructure/database"
	"github.com/you/campusauth/internal/infrastructure/repositories"
)

// Creates the platform operator account. Safe to run more than once.
func main() {
	email := flag.String("email", os.Getenv("SUPER_ADMIN_EMAIL"), "super admin email")
	password := flag.String("password", os.Getenv("SUPER_ADMIN_PASSWORD"), "super admin password")
	name := flag.String("name", "Super Admin", "display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(cfg.DBDriver, cfg.DSN, logger.Warn)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	identity, created, err := app.EnsureSuperAdmin(context.Background(),
		repositories.NewIdentityRepository(db), auth.NewPasswordService(), *email, *password, *name)
	if err != nil {
		zl.Fatal("failed to create super admin", zap.String("email", *email), zap.Error(err))
	}
	if !created {
		zl.Info("super admin already exists", zap.String("email", identity.Email), zap.String("id", identity.ID))
		return
	}
	zl.Info("super admin created", zap.String("email", identity.Email), zap.String("id", identity.ID))
}
