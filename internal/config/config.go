package config

import "os"

// Getenv returns the value of an environment variable, or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// JWTSecret returns the HMAC secret used to sign session tokens.
func JWTSecret() string {
	return Getenv("JWT_SECRET", "dev-secret-change-me")
}
