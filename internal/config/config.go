package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP servers
	Port    string
	WebPort string

	// Remote collection the dashboard talks to
	ExpensesAPIURL string
	APITimeout     time.Duration

	// Backend selection for the collection service
	DataBackend  string
	SQLiteDBPath string
	SeedDemoData bool

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (optional, worker only)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	RateLimitPerMinute int
	LogLevel           string
}

func Load() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "8081"),
		WebPort: getEnv("WEB_PORT", "8082"),

		ExpensesAPIURL: getEnv("EXPENSES_API_URL", "http://localhost:8081/expenses"),
		APITimeout:     getEnvDuration("API_TIMEOUT", 10*time.Second),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		SeedDemoData: getEnvBool("SEED_DEMO_DATA", true),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Events"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	ports := []struct{ name, value string }{{"port", c.Port}, {"web port", c.WebPort}}
	for _, p := range ports {
		name, value := p.name, p.value
		if port, err := strconv.Atoi(value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", name, value))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port))
		}
	}

	// The expenses base URL must be absolute http(s)
	if parsedURL, err := url.Parse(c.ExpensesAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid expenses API URL '%s': %v", c.ExpensesAPIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid expenses API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	} else if parsedURL.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid expenses API URL '%s': missing host", c.ExpensesAPIURL))
	}

	if c.APITimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be positive", c.APITimeout))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
