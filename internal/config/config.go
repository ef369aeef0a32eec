package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Issuer      string            `yaml:"issuer"`
	ActiveKID   string            `yaml:"active_kid"`
	SigningKeys map[string]string `yaml:"signing_keys"`
	StudentTTL  string            `yaml:"student_ttl"`
	AdminTTL    string            `yaml:"admin_ttl"`
}

type OTPConfig struct {
	TTL           string   `yaml:"ttl"`
	Length        int      `yaml:"length"`
	MaxAttempts   int      `yaml:"max_attempts"`
	Store         string   `yaml:"store"`
	PublicDomains []string `yaml:"public_domains"`
}

type EmailConfig struct {
	Provider string `yaml:"provider"`
	From     string `yaml:"from"`
	Region   string `yaml:"region"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TenantConfig struct {
	SweepInterval        string `yaml:"sweep_interval"`
	DefaultAdminPassword string `yaml:"default_admin_password"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Email    EmailConfig    `yaml:"email"`
	Casbin   CasbinConfig   `yaml:"casbin"`
	Log      LogConfig      `yaml:"log"`
	Tenants  TenantConfig   `yaml:"tenants"`
}

type Config struct {
	AppName              string
	Port                 string
	Env                  string
	DBDriver             string
	DSN                  string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	JWTIssuer            string
	JWTActiveKID         string
	JWTSigningKeys       map[string]string
	StudentTTL           time.Duration
	AdminTTL             time.Duration
	OTP_TTL              time.Duration
	OTP_Length           int
	OTP_MaxAttempts      int
	OTP_Store            string
	PublicDomains        []string
	EmailProvider        string
	EmailFrom            string
	EmailRegion          string
	CasbinModelPath      string
	LogLevel             string
	SweepInterval        time.Duration
	DefaultAdminPassword string
}

// IsDevelopment reports whether stack traces may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DefaultPublicDomains are consumer mail providers that never identify a university
var DefaultPublicDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com"}

func defaults() ConfigFile {
	return ConfigFile{
		App:      AppConfig{Name: "UNIMIGO", Port: 8001, Env: "production"},
		Database: DatabaseConfig{Driver: "postgres"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		JWT: JWTConfig{
			Issuer:     "campusauth",
			StudentTTL: "720h",
			AdminTTL:   "168h",
		},
		OTP: OTPConfig{
			TTL:           "10m",
			Length:        6,
			MaxAttempts:   5,
			Store:         "redis",
			PublicDomains: DefaultPublicDomains,
		},
		Email:   EmailConfig{Provider: "log"},
		Log:     LogConfig{Level: "info"},
		Tenants: TenantConfig{SweepInterval: "1h", DefaultAdminPassword: "admin123"},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env, the YAML config file and environment overrides
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

// LoadFrom builds a Config from the file at path. A missing file falls back to defaults.
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	applyEnv(configFile)

	studentTTL, err := time.ParseDuration(configFile.JWT.StudentTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT student TTL: %w", err)
	}

	adminTTL, err := time.ParseDuration(configFile.JWT.AdminTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT admin TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	sweep, err := time.ParseDuration(configFile.Tenants.SweepInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant sweep interval: %w", err)
	}

	publicDomains := make([]string, 0, len(configFile.OTP.PublicDomains))
	for _, d := range configFile.OTP.PublicDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			publicDomains = append(publicDomains, d)
		}
	}

	cfg := &Config{
		AppName:              configFile.App.Name,
		Port:                 fmt.Sprintf("%d", configFile.App.Port),
		Env:                  configFile.App.Env,
		DBDriver:             configFile.Database.Driver,
		DSN:                  configFile.Database.DSN,
		RedisAddr:            configFile.Redis.Addr,
		RedisPassword:        configFile.Redis.Password,
		RedisDB:              configFile.Redis.DB,
		JWTIssuer:            configFile.JWT.Issuer,
		JWTActiveKID:         configFile.JWT.ActiveKID,
		JWTSigningKeys:       configFile.JWT.SigningKeys,
		StudentTTL:           studentTTL,
		AdminTTL:             adminTTL,
		OTP_TTL:              otpTTL,
		OTP_Length:           configFile.OTP.Length,
		OTP_MaxAttempts:      configFile.OTP.MaxAttempts,
		OTP_Store:            configFile.OTP.Store,
		PublicDomains:        publicDomains,
		EmailProvider:        configFile.Email.Provider,
		EmailFrom:            configFile.Email.From,
		EmailRegion:          configFile.Email.Region,
		CasbinModelPath:      configFile.Casbin.ModelPath,
		LogLevel:             configFile.Log.Level,
		SweepInterval:        sweep,
		DefaultAdminPassword: configFile.Tenants.DefaultAdminPassword,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the service relies on
func (c *Config) Validate() error {
	if len(c.JWTSigningKeys) == 0 {
		return errors.New("config: at least one JWT signing key is required")
	}
	if c.JWTActiveKID == "" && len(c.JWTSigningKeys) == 1 {
		for kid := range c.JWTSigningKeys {
			c.JWTActiveKID = kid
		}
	}
	if _, ok := c.JWTSigningKeys[c.JWTActiveKID]; !ok {
		return fmt.Errorf("config: active JWT key id %q is not in the key ring", c.JWTActiveKID)
	}
	for kid, secret := range c.JWTSigningKeys {
		if secret == "" {
			return fmt.Errorf("config: JWT key %q has an empty secret", kid)
		}
	}
	if c.StudentTTL <= 0 || c.AdminTTL <= 0 || c.OTP_TTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("config: TTLs and the sweep interval must be positive")
	}
	if c.OTP_Length < 4 || c.OTP_Length > 10 {
		return fmt.Errorf("config: OTP length must be between 4 and 10, got %d", c.OTP_Length)
	}
	if c.OTP_MaxAttempts < 1 {
		return fmt.Errorf("config: OTP max attempts must be at least 1, got %d", c.OTP_MaxAttempts)
	}
	switch c.OTP_Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown OTP store %q", c.OTP_Store)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.DBDriver)
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	config := defaults()

	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &config, nil
		}
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func applyEnv(f *ConfigFile) {
	if v := os.Getenv("APP_PORT"); v != "" {
		f.App.Port = atoi(v, f.App.Port)
	}
	f.App.Env = env("APP_ENV", f.App.Env)
	f.Database.Driver = env("DATABASE_DRIVER", f.Database.Driver)
	f.Database.DSN = env("DATABASE_DSN", f.Database.DSN)
	f.Redis.Addr = env("REDIS_ADDR", f.Redis.Addr)
	f.Redis.Password = env("REDIS_PASSWORD", f.Redis.Password)
	if v := os.Getenv("REDIS_DB"); v != "" {
		f.Redis.DB = atoi(v, f.Redis.DB)
	}
	f.JWT.ActiveKID = env("JWT_ACTIVE_KID", f.JWT.ActiveKID)
	if v := os.Getenv("JWT_SIGNING_KEYS"); v != "" {
		f.JWT.SigningKeys = parseKeyRing(v)
	} else if v := os.Getenv("JWT_SECRET"); v != "" {
		f.JWT.SigningKeys = map[string]string{"default": v}
		f.JWT.ActiveKID = "default"
	}
	f.OTP.Store = env("OTP_STORE", f.OTP.Store)
	if v := os.Getenv("OTP_MAX_ATTEMPTS"); v != "" {
		f.OTP.MaxAttempts = atoi(v, f.OTP.MaxAttempts)
	}
	f.Email.Provider = env("EMAIL_PROVIDER", f.Email.Provider)
	f.Email.From = env("SES_FROM", f.Email.From)
	f.Email.Region = env("AWS_REGION", f.Email.Region)
	f.Log.Level = env("LOG_LEVEL", f.Log.Level)
}

// parseKeyRing reads "kid1:secret1,kid2:secret2"
func parseKeyRing(s string) map[string]string {
	ring := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		kid, secret, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || kid == "" {
			continue
		}
		ring[kid] = secret
	}
	return ring
}

// KeyIDs returns the configured key ids in stable order
func (c *Config) KeyIDs() []string {
	ids := make([]string, 0, len(c.JWTSigningKeys))
	for kid := range c.JWTSigningKeys {
		ids = append(ids, kid)
	}
	sort.Strings(ids)
	return ids
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
