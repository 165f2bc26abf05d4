package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type Config struct {
	AppPort string

	// FrontendBaseURL is where the browser lands after a successful login.
	FrontendBaseURL string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CookieSecure   bool
	CookieSameSite http.SameSite

	RedisAddr     string
	RedisPassword string

	// DatabaseDSN is optional; without it login audit records are dropped.
	DatabaseDSN string

	Providers []ProviderConfig
	Routes    []RouteConfig
}

func Load() Config {
	cfg := Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		CookieSecure:   getEnv("COOKIE_SECURE", "false") == "true",
		CookieSameSite: parseSameSite(getEnv("COOKIE_SAME_SITE", "Lax")),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),
	}

	cfg.Providers = loadProviders()
	cfg.Routes = loadRoutes()

	return cfg
}

// Validate rejects configurations that would produce a broken deployment
// rather than letting them fail at request time.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("config: access token TTL (%s) must be shorter than refresh token TTL (%s)",
			c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	// Browsers drop SameSite=None cookies that are not Secure.
	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return fmt.Errorf("config: COOKIE_SAME_SITE=None requires COOKIE_SECURE=true")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("config: no oauth provider configured, set at least one *_CLIENT_ID")
	}
	return nil
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
