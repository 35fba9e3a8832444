package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/eventick/internal/models"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	GinMode       string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
	QRSecret  string        `envconfig:"QR_SECRET"`

	PinLength      int           `envconfig:"PIN_LENGTH" default:"6"`
	PinMaxAttempts int           `envconfig:"PIN_MAX_ATTEMPTS" default:"10"`
	AllowOversell  bool          `envconfig:"ALLOW_OVERSELL" default:"false"`
	EventCacheTTL  time.Duration `envconfig:"EVENT_CACHE_TTL" default:"5m"`

	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Admin    AdminConfig    `envconfig:"ADMIN"`
}

// Nested fields are read as <PREFIX>_<FIELD>, e.g. DB_HOST or REDIS_ADDR.
type DatabaseConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string
	Name     string `default:"eventick"`
	SSLMode  string `default:"disable"`
}

// RedisConfig is shared by the event cache and the delivery queue. An empty
// Addr turns both off.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int    `default:"0"`
}

type AdminConfig struct {
	Email    string
	Phone    string
	Password string
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.QRSecret == "" {
		cfg.QRSecret = cfg.JWTSecret
	}
	if cfg.PinLength < models.PinCodeMinLength || cfg.PinLength > models.PinCodeMaxLength {
		return nil, fmt.Errorf("PIN_LENGTH must be between %d and %d", models.PinCodeMinLength, models.PinCodeMaxLength)
	}
	if cfg.PinMaxAttempts < 1 {
		return nil, fmt.Errorf("PIN_MAX_ATTEMPTS must be positive")
	}
	return &cfg, nil
}

func (cfg DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)
}

// GormConfig is used for every connection. Foreign keys are not created:
// dependants are allowed to outlive their parents, and the event to ticket
// cascade is done by the services package.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), GormConfig())
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedAdmin(db, cfg.Admin); err != nil {
		return nil, err
	}

	log.Info("database ready",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.Name))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AdminUser{},
		&models.Club{},
		&models.Registrant{},
		&models.Event{},
		&models.EventTicket{},
		&models.TicketOrder{},
		&models.TicketOrderDetail{},
		&models.TicketDetail{},
	)
}

// SeedAdmin creates the configured superuser unless one with that email exists.
func SeedAdmin(db *gorm.DB, cfg AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	email := models.NormalizeEmail(cfg.Email)
	var existing models.AdminUser
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.AdminUser{
		Email:    email,
		Phone:    cfg.Phone,
		Password: string(hashed),
		IsActive: true,
		IsAdmin:  true,
	}
	if err := db.Create(&admin).Error; err != nil && !models.IsUniqueViolation(err) {
		return err
	}
	return nil
}
