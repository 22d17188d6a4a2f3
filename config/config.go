package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath                   = "."
	defaultMaxRequestBodySize     = "100KB"
	defaultBcryptCost             = 12
	minBcryptCost                 = 10
	defaultAccessTokenTTLMinutes  = 15
	defaultRefreshTokenTTLDays    = 7
	defaultSessionCleanupInterval = time.Hour
	defaultPasswordMinLength      = 6
	defaultQRCodeSize             = 256
	defaultWompiCheckoutURL       = "https://checkout.wompi.co/p/"
	defaultWompiCurrency          = "COP"
	defaultRateLimitPrefix        = "rl"
	defaultRateLimitCapacity      = 20
	defaultRateLimitRefillTokens  = 1
	defaultRateLimitInterval      = 3 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int      `json:"port" yaml:"port"`
		MaxRequestBodySize string   `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		TrustedProxies     []string `json:"trustedProxies" yaml:"trustedProxies"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access  string `json:"access" yaml:"access"`
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	// Redis backs the distributed rate limiter; optional
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	// RateLimit configures the token bucket guarding /auth routes
	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// RabbitMQ configuration for the rabbitmq publisher provider
	RabbitMQ *RabbitMQConfig `json:"rabbitmq" yaml:"rabbitmq"`

	// Firebase configuration for operator push alerts
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// QRCode configuration for payment link QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// Wompi payment gateway configuration
	Wompi *WompiConfig `json:"wompi" yaml:"wompi"`

	// WhatsApp webhook configuration
	WhatsApp *WhatsAppConfig `json:"whatsapp" yaml:"whatsapp"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost             int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTokenTTLMinutes  int           `json:"accessTokenTtlMinutes" yaml:"accessTokenTtlMinutes"`
	RefreshTokenTTLDays    int           `json:"refreshTokenTtlDays" yaml:"refreshTokenTtlDays"`
	SessionCleanupInterval time.Duration `json:"sessionCleanupInterval" yaml:"sessionCleanupInterval"`
}

// PasswordStrengthConfig defines password strength requirements
type PasswordStrengthConfig struct {
	MinLength        int  `json:"minLength" yaml:"minLength"`
	RequireUppercase bool `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool `json:"requireSpecial" yaml:"requireSpecial"`
	MaxLength        int  `json:"maxLength" yaml:"maxLength"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// RedisConfig defines the Redis connection
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// RateLimitConfig defines the token bucket parameters
type RateLimitConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled"`
	Prefix         string        `json:"prefix" yaml:"prefix"`
	Capacity       int           `json:"capacity" yaml:"capacity"`
	RefillTokens   int           `json:"refillTokens" yaml:"refillTokens"`
	RefillInterval time.Duration `json:"refillInterval" yaml:"refillInterval"`
	TTL            time.Duration `json:"ttl" yaml:"ttl"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for HTTP POST (n8n), "google" for Google Pub/Sub, "rabbitmq" for AMQP
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// HTTP endpoint receiving events, typically an n8n webhook (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// RabbitMQConfig defines the AMQP connection used by the rabbitmq provider
type RabbitMQConfig struct {
	URL          string `json:"url" yaml:"url"`
	Queue        string `json:"queue" yaml:"queue"`
	QueueDurable bool   `json:"queueDurable" yaml:"queueDurable"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// WompiConfig defines the payment gateway keys
type WompiConfig struct {
	PublicKey       string `json:"publicKey" yaml:"publicKey"`
	EventsSecret    string `json:"eventsSecret" yaml:"eventsSecret"`
	IntegritySecret string `json:"integritySecret" yaml:"integritySecret"`
	CheckoutURL     string `json:"checkoutUrl" yaml:"checkoutUrl"`
	Currency        string `json:"currency" yaml:"currency"`
	RedirectURL     string `json:"redirectUrl" yaml:"redirectUrl"`
}

// WhatsAppConfig defines the Meta webhook handshake and signature secrets
type WhatsAppConfig struct {
	VerifyToken string `json:"verifyToken" yaml:"verifyToken"`
	AppSecret   string `json:"appSecret" yaml:"appSecret"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.BcryptCost < minBcryptCost {
		cfg.Auth.BcryptCost = minBcryptCost
	}
	if cfg.Auth.AccessTokenTTLMinutes <= 0 {
		cfg.Auth.AccessTokenTTLMinutes = defaultAccessTokenTTLMinutes
	}
	if cfg.Auth.RefreshTokenTTLDays <= 0 {
		cfg.Auth.RefreshTokenTTLDays = defaultRefreshTokenTTLDays
	}
	if cfg.Auth.SessionCleanupInterval <= 0 {
		cfg.Auth.SessionCleanupInterval = defaultSessionCleanupInterval
	}

	if cfg.PasswordStrength == nil {
		cfg.PasswordStrength = &PasswordStrengthConfig{}
	}
	if cfg.PasswordStrength.MinLength <= 0 {
		cfg.PasswordStrength.MinLength = defaultPasswordMinLength
	}

	if cfg.RateLimit != nil {
		applyRateLimitDefaults(cfg.RateLimit)
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{}
	}
	if cfg.QRCode.Size <= 0 {
		cfg.QRCode.Size = defaultQRCodeSize
	}

	if cfg.Wompi != nil {
		if cfg.Wompi.CheckoutURL == "" {
			cfg.Wompi.CheckoutURL = defaultWompiCheckoutURL
		}
		if cfg.Wompi.Currency == "" {
			cfg.Wompi.Currency = defaultWompiCurrency
		}
	}
}

func applyRateLimitDefaults(rl *RateLimitConfig) {
	if rl.Prefix == "" {
		rl.Prefix = defaultRateLimitPrefix
	}
	if rl.Capacity < 1 {
		rl.Capacity = defaultRateLimitCapacity
	}
	if rl.RefillTokens < 1 {
		rl.RefillTokens = defaultRateLimitRefillTokens
	}
	if rl.RefillInterval <= 0 {
		rl.RefillInterval = defaultRateLimitInterval
	}
	// Keys must outlive a full refill, or an idle bucket resets early.
	if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
		rl.TTL = minTTL
	}
}

// validate rejects settings that would silently weaken authentication or
// payment verification.
func (c *Config) validate() error {
	if c.SecretKey.Access == "" || c.SecretKey.Refresh == "" {
		return errors.New("secretKey.access and secretKey.refresh must be set")
	}
	if c.SecretKey.Access == c.SecretKey.Refresh {
		return errors.New("secretKey.access and secretKey.refresh must differ")
	}
	if c.RateLimit != nil && c.RateLimit.Enabled && (c.Redis == nil || c.Redis.Addr == "") {
		return errors.New("rateLimit.enabled requires redis.addr")
	}
	if c.Wompi != nil && (c.Wompi.EventsSecret == "" || c.Wompi.IntegritySecret == "") {
		return errors.New("wompi.eventsSecret and wompi.integritySecret must be set")
	}

	return nil
}

// AccessTokenTTL returns the access token lifetime.
func (a *AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a *AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLDays) * 24 * time.Hour
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
