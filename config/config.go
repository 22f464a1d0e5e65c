package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"loyalty-wallet/internal/infra/mail"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBURL         string
	JWTSecret     string
	CORSOrigin    string
	PublicBaseURL string

	// Apple redirect tokens
	PassTokenSecret      string
	ApplePassServiceURL  string
	ApplePassServiceKey  string
	WalletProgramName    string
	WalletIssuerName     string
	WalletProgramLogoURL string

	// Google Wallet
	WalletIssuerID           string
	WalletClassBase          string
	GoogleServiceAccountFile string
	GoogleWalletOrigins      []string
	GoogleWalletAPIBaseURL   string

	MailFrom     string
	SMTP         mail.SMTPConfig
	SMTPFallback mail.SMTPConfig

	RateLimitRPS   float64
	RateLimitBurst int

	// Staff Google sign-in (optional)
	GoogleClientID         string
	GoogleClientSecret     string
	GoogleRedirectURL      string
	GoogleFrontendRedirect string
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var missing []string
	must := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBURL:         must("DB_URL"),
		JWTSecret:     must("JWT_SECRET"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "http://localhost:5173"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		ApplePassServiceURL:  getEnv("APPLE_PASS_SERVICE_URL", ""),
		ApplePassServiceKey:  getEnv("APPLE_PASS_SERVICE_KEY", ""),
		WalletProgramName:    getEnv("WALLET_PROGRAM_NAME", "Rewards"),
		WalletIssuerName:     getEnv("WALLET_ISSUER_NAME", "Rewards"),
		WalletProgramLogoURL: getEnv("WALLET_PROGRAM_LOGO_URL", ""),

		WalletIssuerID:           must("WALLET_ISSUER_ID"),
		WalletClassBase:          must("WALLET_CLASS_BASE"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleWalletOrigins:      splitList(getEnv("GOOGLE_WALLET_ORIGINS", "")),
		GoogleWalletAPIBaseURL:   getEnv("GOOGLE_WALLET_API_BASE_URL", ""),

		MailFrom: getEnv("SMTP_FROM", ""),
		SMTP: mail.SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		SMTPFallback: mail.SMTPConfig{
			Host:     getEnv("SMTP_FALLBACK_HOST", ""),
			Port:     getEnvInt("SMTP_FALLBACK_PORT", 587),
			User:     getEnv("SMTP_FALLBACK_USER", ""),
			Password: getEnv("SMTP_FALLBACK_PASSWORD", ""),
		},

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		GoogleClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:      getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleFrontendRedirect: getEnv("GOOGLE_FRONTEND_REDIRECT", ""),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg.PassTokenSecret = getEnv("PASS_TOKEN_SECRET", cfg.JWTSecret)
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTP.User
	}
	return cfg, nil
}

// GoogleSignInEnabled reports whether staff can sign in with Google.
func (c *Config) GoogleSignInEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
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
