package app

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/campusauth/domain"
	"github.com/you/campusauth/internal/config"
	httpx "github.com/you/campusauth/internal/http"
	"github.com/you/campusauth/internal/http/handlers"
	"github.com/you/campusauth/internal/http/middleware"
	"github.com/you/campusauth/internal/infrastructure/auth"
	"github.com/you/campusauth/internal/infrastructure/database"
	"github.com/you/campusauth/internal/infrastructure/notifications"
	"github.com/you/campusauth/internal/infrastructure/repositories"
	"github.com/you/campusauth/internal/observability"
	"github.com/you/campusauth/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Enforcer    *casbin.Enforcer

	// Repositories
	TenantRepo   domain.TenantRepository
	IdentityRepo domain.IdentityRepository
	CodeStore    domain.CodeStore

	// Services
	PasswordSvc domain.PasswordService
	TokenSvc    domain.TokenService
	Mailer      domain.Mailer
	Audit       domain.AuditLogger
	OTPSvc      domain.OTPService
	AuthSvc     domain.AuthService
	TenantSvc   *services.TenantServiceImpl
	PolicySvc   domain.PolicyService
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: log}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initCodeStore(ctx); err != nil {
		container.Close()
		return nil, err
	}
	if err := container.initPolicies(); err != nil {
		container.Close()
		return nil, err
	}
	if err := container.initMailer(ctx); err != nil {
		container.Close()
		return nil, err
	}
	if err := container.initServices(); err != nil {
		container.Close()
		return nil, err
	}
	return container, nil
}

func (c *Container) initDatabase() error {
	level := logger.Warn
	if c.Config.IsDevelopment() {
		level = logger.Info
	}
	db, err := database.Open(c.Config.DBDriver, c.Config.DSN, level)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	c.DB = db
	c.TenantRepo = repositories.NewTenantRepository(db)
	c.IdentityRepo = repositories.NewIdentityRepository(db)
	return nil
}

func (c *Container) initCodeStore(ctx context.Context) error {
	if c.Config.OTP_Store == "memory" {
		c.Logger.Warn("using in-process code store; codes do not survive restarts")
		c.CodeStore = repositories.NewMemoryCodeStore(c.Config.OTP_MaxAttempts)
		return nil
	}

	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		rdb.Close()
		return err
	}
	c.RedisClient = rdb.Client
	c.CodeStore = repositories.NewRedisCodeStore(rdb.Client, c.Config.OTP_MaxAttempts)
	return nil
}

func (c *Container) initPolicies() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return fmt.Errorf("casbin: %w", err)
	}
	c.Enforcer = cas.E
	c.PolicySvc = services.NewPolicyService(cas.E)
	if err := c.PolicySvc.SeedDefaults(); err != nil {
		return fmt.Errorf("casbin: seed default policies: %w", err)
	}
	return nil
}

func (c *Container) initMailer(ctx context.Context) error {
	switch c.Config.EmailProvider {
	case "ses":
		mailer, err := notifications.NewSESMailer(ctx, c.Config.EmailRegion, c.Config.EmailFrom)
		if err != nil {
			return err
		}
		c.Mailer = mailer
	case "log", "":
		c.Mailer = notifications.NewLogMailer(c.Logger)
	default:
		return fmt.Errorf("unknown email provider %q", c.Config.EmailProvider)
	}
	return nil
}

func (c *Container) initServices() error {
	c.PasswordSvc = auth.NewPasswordService()
	tokens, err := auth.NewJWTService(c.Config.JWTSigningKeys, c.Config.JWTActiveKID, c.Config.JWTIssuer)
	if err != nil {
		return err
	}
	c.TokenSvc = tokens
	c.Logger.Info("jwt key ring loaded",
		zap.Strings("kids", c.Config.KeyIDs()),
		zap.String("active", c.Config.JWTActiveKID),
	)
	c.Audit = observability.NewAuditLogger(c.Logger)

	c.OTPSvc = services.NewOTPService(c.TenantRepo, c.CodeStore, c.Mailer, c.Audit, c.Logger, services.OTPConfig{
		Length:        c.Config.OTP_Length,
		TTL:           c.Config.OTP_TTL,
		PublicDomains: c.Config.PublicDomains,
	})
	c.AuthSvc = services.NewAuthService(c.IdentityRepo, c.TenantRepo, c.OTPSvc, c.TokenSvc, c.PasswordSvc, c.Audit, services.AuthConfig{
		StudentTTL: c.Config.StudentTTL,
		AdminTTL:   c.Config.AdminTTL,
	})
	c.TenantSvc = services.NewTenantService(c.TenantRepo, c.IdentityRepo, c.PasswordSvc, c.Audit, c.Logger, services.TenantConfig{
		PublicDomains:        c.Config.PublicDomains,
		DefaultAdminPassword: c.Config.DefaultAdminPassword,
	})
	return nil
}

// Router builds the HTTP surface over the container's services
func (c *Container) Router() *gin.Engine {
	casbinMW := middleware.NewCasbinMW(c.Enforcer, c.Logger)
	return httpx.BuildRouter(httpx.Routes{
		Auth:        handlers.NewAuthHandlers(c.AuthSvc, c.OTPSvc),
		Admin:       handlers.NewAdminHandlers(c.AuthSvc, c.TenantSvc, c.IdentityRepo),
		University:  handlers.NewUniversityHandlers(c.TenantSvc),
		Policy:      handlers.NewPolicyHandlers(c.PolicySvc),
		External:    handlers.NewExternalAuthzHandlers(c.AuthSvc, c.PolicySvc, casbinMW, c.Logger),
		JWT:         middleware.NewAuthMW(c.AuthSvc, c.Logger),
		Casbin:      casbinMW,
		Logger:      c.Logger,
		Development: c.Config.IsDevelopment(),
	})
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

// NewLogger builds the process logger from configuration
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.LogLevel, cfg.IsDevelopment())
}
