package config

import (
	"net/url"
	"os"
	"strings"
)

type Config struct {
	MongoURI            string
	PostgresURI         string
	RedisURI            string
	JWTSecret           string
	ServiceJWTSecret    string // HS256 key shared with the content-generation workflow
	EncryptionKey       string // base64 AES-256 key for partner payout details
	Port                string
	FrontendURL         string
	AllowedOrigins      []string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	Host                string // public base URL of this API, e.g. https://api.agora.social
	AllowedHost         string // set in production only; enables the Host header check
	Environment         string
	LogLevel            string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")

	cfg := &Config{
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/agora")),
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/agora?sslmode=disable"),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:           jwtSecret,
		ServiceJWTSecret:    getEnv("SERVICE_JWT_SECRET", jwtSecret),
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		Port:                getEnv("PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Host:                host,
		Environment:         env,
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
	if cfg.IsProduction() {
		cfg.AllowedHost = hostname(host)
	}

	origins := splitList(getEnv("ALLOWED_ORIGINS", ""))
	if len(origins) == 0 {
		origins = splitList(strings.Join([]string{
			cfg.FrontendURL, getEnv("FRONTEND_URL_2", ""), getEnv("FRONTEND_URL_3", ""),
		}, ","))
	}
	cfg.AllowedOrigins = withSiteOrigins(origins, hostname(host))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return cfg
}

// withSiteOrigins adds https://<site> and https://www.<site> when the API
// runs on a subdomain such as api.<site>.
func withSiteOrigins(origins []string, apiHost string) []string {
	if apiHost == "" || apiHost == "localhost" {
		return origins
	}
	_, site, ok := strings.Cut(apiHost, ".")
	if !ok || site == "" {
		return origins
	}
	for _, o := range []string{"https://" + site, "https://www." + site} {
		if !containsOrigin(origins, o) {
			origins = append(origins, o)
		}
	}
	return origins
}

// hostname extracts the bare host from a URL or host string.
func hostname(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), o) {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
