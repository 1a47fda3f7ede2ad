package config

import "os"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type Config struct {
	Port        string
	DatabaseURL string
	// Timezone is the studio's IANA zone; every "today" in the system is
	// computed against it.
	Timezone string
	Stripe   StripeConfig
	R2       R2Config
}

func LoadConfig() *Config {
	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Timezone = getEnv("STUDIO_TIMEZONE", "America/New_York")

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.SuccessURL = getEnv("STRIPE_SUCCESS_URL", "http://localhost:5173/payment/success?session_id={CHECKOUT_SESSION_ID}")
	cfg.Stripe.CancelURL = getEnv("STRIPE_CANCEL_URL", "http://localhost:5173/payment/cancel")

	cfg.R2.AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2.AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2.SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2.Bucket = os.Getenv("R2_BUCKET")

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
