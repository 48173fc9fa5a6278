package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote backend
	BaseURL string

	// Credentials. APIKey covers reads; Username/Password cover writes.
	// APIKey may be minted lazily through an authenticated session when
	// username and password are present.
	APIKey   string
	Username string
	Password string

	// HTTP
	RequestTimeout time.Duration

	// Entity defaults
	MemberEmailDomain string
}

// Load reads configuration from the environment.
func Load() *Config {
	cfg := &Config{
		BaseURL:  strings.TrimRight(getEnv("WALLOS_URL", ""), "/"),
		APIKey:   getEnv("WALLOS_API_KEY", ""),
		Username: getEnv("WALLOS_USERNAME", ""),
		Password: getEnv("WALLOS_PASSWORD", ""),

		RequestTimeout: getEnvDuration("WALLOS_TIMEOUT", 30*time.Second),

		MemberEmailDomain: getEnv("MEMBER_EMAIL_DOMAIN", "wallos.local"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.BaseURL == "" {
		errors = append(errors, "WALLOS_URL is required")
	} else if parsed, err := url.Parse(c.BaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid base URL '%s': %v", c.BaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	hasKey := c.APIKey != ""
	hasLogin := c.Username != "" && c.Password != ""
	if !hasKey && !hasLogin {
		errors = append(errors, "either WALLOS_API_KEY or WALLOS_USERNAME+WALLOS_PASSWORD must be provided")
	}
	if c.Username != "" && c.Password == "" {
		errors = append(errors, "WALLOS_PASSWORD cannot be empty when WALLOS_USERNAME is set")
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 10 minutes", c.RequestTimeout))
	}

	if strings.ContainsAny(c.MemberEmailDomain, "@ ") {
		errors = append(errors, fmt.Sprintf("invalid member email domain '%s'", c.MemberEmailDomain))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
