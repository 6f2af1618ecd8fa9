// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Auth    AuthConfig
	Access  AccessConfig
	Uploads UploadConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds archive storage configuration. The database, blob store
// and auth key all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds authentication configuration for the single admin
// account.
type AuthConfig struct {
	// Username of the one account that may write to the archive.
	Username string
	// PasswordHash is the Argon2id encoded hash of the account password.
	// Generate one with `archiv-seed -hash-password`.
	PasswordHash string
	// TokenKey is the hex-encoded PASETO v4 symmetric key. Set by
	// auth.LoadOrGenerateKey in main when left empty.
	TokenKey string
	// TokenDuration is the session lifetime (e.g. 12h).
	TokenDuration time.Duration
	// LoginRPS and LoginBurst throttle login attempts per source address.
	LoginRPS   float64
	LoginBurst int
}

// AccessConfig points at the network access rules file.
type AccessConfig struct {
	// RulesPath is a JSON file mapping resource kinds (or "*") to CIDR
	// allow/deny lists. Empty or missing means no network restrictions.
	RulesPath string
}

// UploadConfig bounds document uploads.
type UploadConfig struct {
	// MaxBytes caps a single document upload. 0 disables the cap.
	MaxBytes int64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for archive storage")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	adminUsername := flag.String("admin-username", "", "Username of the admin account")
	adminPasswordHash := flag.String("admin-password-hash", "", "Argon2id hash of the admin password")
	tokenDuration := flag.String("token-duration", "", "Session token lifetime (e.g., 12h)")

	accessRules := flag.String("access-rules", "", "Path to the network access rules file")
	maxUploadBytes := flag.Int64("max-upload-bytes", 0, "Maximum document upload size in bytes")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			Username:     getConfigValue(*adminUsername, "ADMIN_USERNAME", ""),
			PasswordHash: getConfigValue(*adminPasswordHash, "ADMIN_PASSWORD_HASH", ""),
			TokenKey:     getConfigValue("", "AUTH_TOKEN_KEY", ""),
			LoginRPS:     getFloatConfigValue("", "LOGIN_RPS", 0.5),
			LoginBurst:   getIntConfigValue("", "LOGIN_BURST", 5),
		},
		Access: AccessConfig{
			RulesPath: getConfigValue(*accessRules, "ACCESS_RULES", ""),
		},
		Uploads: UploadConfig{
			MaxBytes: getInt64ConfigValue(*maxUploadBytes, "MAX_UPLOAD_BYTES", 100<<20),
		},
	}

	tokenDurationStr := getConfigValue(*tokenDuration, "TOKEN_DURATION", "12h")
	parsed, err := time.ParseDuration(tokenDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid token duration %q: %w", tokenDurationStr, err)
	}
	cfg.Auth.TokenDuration = parsed

	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	cfg.Server.ReadTimeout, err = time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	cfg.Server.WriteTimeout, err = time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	cfg.Server.IdleTimeout, err = time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Auth.Username == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if c.Auth.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD_HASH is required")
	}
	if !strings.HasPrefix(c.Auth.PasswordHash, "$argon2id$") {
		return errors.New("ADMIN_PASSWORD_HASH must be an Argon2id encoded hash, not a plaintext password")
	}

	if c.Uploads.MaxBytes < 0 {
		return errors.New("MAX_UPLOAD_BYTES may not be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Klausurarchiv", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// DatabasePath returns the sqlite database location under the data path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "archiv.db")
}

// BlobPath returns the blob store directory under the data path.
func (c *Config) BlobPath() string {
	return filepath.Join(c.Data.BasePath, "blobs")
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue int64, envKey string, defaultValue int64) int64 {
	if flagValue != 0 {
		return flagValue
	}
	strValue := os.Getenv(envKey)
	if strValue == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Real environment variables take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
