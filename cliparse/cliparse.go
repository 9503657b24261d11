package cliparse

import (
	"errors"
	"flag"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Token secrets and lifetimes
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	CORSOrigin string
	// Peers whose X-Forwarded-For and X-Real-IP headers are believed
	TrustedProxies []netip.Prefix
	Production     bool
	UploadDir  string
	LogFormat  string

	// Image host
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Text generation
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	AIRateLimit  int // requests per minute per client
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("thinkshare", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Directory for temporary uploads")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (json or text)")
	var proxies string
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set forwarding headers")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AccessTokenSecret, "access-secret", "", "Access token secret (prefer env)")
	fs.StringVar(&cfg.RefreshTokenSecret, "refresh-secret", "", "Refresh token secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8001 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "postgres"
		}
	}
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return Config{}, errors.New("DATABASE_TYPE must be postgres or sqlite")
	}

	// Secrets - MUST be provided
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	}
	if cfg.AccessTokenSecret == "" {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET required")
	}

	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = os.Getenv("REFRESH_TOKEN_SECRET")
	}
	if cfg.RefreshTokenSecret == "" {
		return Config{}, errors.New("REFRESH_TOKEN_SECRET required")
	}
	if cfg.RefreshTokenSecret == cfg.AccessTokenSecret {
		return Config{}, errors.New("REFRESH_TOKEN_SECRET must differ from ACCESS_TOKEN_SECRET")
	}

	var err error
	if cfg.AccessTokenExpiry, err = durationEnv("ACCESS_TOKEN_EXPIRY", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenExpiry, err = durationEnv("REFRESH_TOKEN_EXPIRY", 15*24*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.Getenv("UPLOAD_DIR")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}
	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	if cfg.TrustedProxies, err = parseProxies(proxies); err != nil {
		return Config{}, err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("NODE_ENV")
	}
	cfg.Production = env == "production"

	// Optional integrations; the matching endpoints are disabled when unset
	cfg.CloudinaryCloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.CloudinaryAPIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.CloudinaryAPISecret = os.Getenv("CLOUDINARY_API_SECRET")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-1.5-flash"
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-3.5-turbo"
	}

	cfg.AIRateLimit = 10
	if v := os.Getenv("AI_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, errors.New("invalid AI_RATE_LIMIT env variable")
		}
		cfg.AIRateLimit = n
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return d, nil
}

// parseProxies accepts bare addresses and CIDR prefixes.
func parseProxies(v string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, errors.New("invalid TRUSTED_PROXIES entry: " + part)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, errors.New("invalid TRUSTED_PROXIES entry: " + part)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
