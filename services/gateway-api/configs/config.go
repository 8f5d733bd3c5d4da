package configs

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/nimeshabuddhika/payment-gateway-api/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EnvPrefix = "app"

// Config holds application configuration loaded from environment variables and optional config file.
type Config struct {
	Env  string `mapstructure:"ENV" validate:"required"`
	Port string `mapstructure:"PORT" validate:"required"`

	// Secrets and collaborators the payment backend cannot start without
	JwtSecret         string `mapstructure:"JWT_SECRET" validate:"required"`
	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID" validate:"required"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET" validate:"required"`
	EmailService      string `mapstructure:"EMAIL_SERVICE" validate:"required"`
	EmailUsername     string `mapstructure:"EMAIL_USERNAME" validate:"required"`
	EmailPassword     string `mapstructure:"EMAIL_PASSWORD" validate:"required"`
	EmailFrom         string `mapstructure:"EMAIL_FROM" validate:"required"`
	BaseURL           string `mapstructure:"BASE_URL" validate:"required"`
	DatabaseURL       string `mapstructure:"DATABASE_URL" validate:"required"`

	TrustedProxies     string `mapstructure:"TRUSTED_PROXIES"`      // comma separated IPs/CIDRs, production only
	CorsAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"` // comma separated, "*" for any
	BodyLimitBytes     int64  `mapstructure:"BODY_LIMIT_BYTES" validate:"min=1"`

	AuthRateLimitWindow  time.Duration `mapstructure:"AUTH_RATE_LIMIT_WINDOW" validate:"min=1s"`
	AuthRateLimitMax     int64         `mapstructure:"AUTH_RATE_LIMIT_MAX" validate:"min=1"`
	GlobalRateLimitRPS   float64       `mapstructure:"GLOBAL_RATE_LIMIT_RPS" validate:"min=0"`
	GlobalRateLimitBurst int           `mapstructure:"GLOBAL_RATE_LIMIT_BURST" validate:"min=1"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	MaxDbCons            int32         `mapstructure:"DB_MAX_CONNECTIONS" validate:"min=1"`
	MinDbCons            int32         `mapstructure:"DB_MIN_CONNECTIONS" validate:"min=0"`
	DbConnectRetries     int           `mapstructure:"DB_CONNECT_RETRIES" validate:"min=0"`
}

// Mode returns the deployment mode. ENV is taken verbatim, so only the exact value "development"
// exposes error diagnostics.
func (c *Config) Mode() pkg.Mode {
	return pkg.Mode(c.Env)
}

// TrustedProxyList splits TRUSTED_PROXIES.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CorsAllowedOrigins)
}

// Load reads configuration from environment (and optional config file), then validates it.
// Missing required variables are reported together as *utils.MissingEnvError.
func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix(EnvPrefix) // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("ENV", string(pkg.ModeProduction))
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("TRUSTED_PROXIES", "10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.1")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("BODY_LIMIT_BYTES", "102400")
	viper.SetDefault("AUTH_RATE_LIMIT_WINDOW", "15m")
	viper.SetDefault("AUTH_RATE_LIMIT_MAX", "20")
	viper.SetDefault("GLOBAL_RATE_LIMIT_RPS", "0")
	viper.SetDefault("GLOBAL_RATE_LIMIT_BURST", "50")
	viper.SetDefault("DB_MAX_CONNECTIONS", "10")
	viper.SetDefault("DB_MIN_CONNECTIONS", "1")
	viper.SetDefault("DB_CONNECT_RETRIES", "5")

	// Optional: Read from config.<env>.yaml if exists
	mode := pkg.Mode(viper.GetString("ENV"))
	if mode.IsDevelopment() {
		logger.Warn("running in development mode")
	}
	viper.SetConfigName("config." + string(mode))
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/gateway-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg, EnvPrefix)
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
