package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all environment-derived settings. main loads .env first
// (godotenv) so local development matches deployment.
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	// StoreTimeout bounds every individual store operation. Callers that
	// hit it receive a retryable TransientStoreError.
	StoreTimeout time.Duration

	// DailyPayoutCap is an optional per-party ceiling on the total amount
	// of transfer requests created per UTC day. Empty string disables it.
	DailyPayoutCap string

	// Supabase storage for receipt blobs.
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	AllowedOrigins []string
}

// Load reads configuration from the environment. DATABASE_URL is the only
// hard requirement.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "devsecret-change-me"
	}

	timeout := 15 * time.Second
	if s := os.Getenv("STORE_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	origins := []string{"http://localhost:3000"}
	if o := os.Getenv("DASHBOARD_ORIGIN"); o != "" {
		origins = append(origins, o)
	}

	return &Config{
		DatabaseURL:    dbURL,
		Port:           port,
		JWTSecret:      secret,
		StoreTimeout:   timeout,
		DailyPayoutCap: os.Getenv("DAILY_PAYOUT_CAP"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket: os.Getenv("SUPABASE_BUCKET"),
		AllowedOrigins: origins,
	}, nil
}
