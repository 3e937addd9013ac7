package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	AllowedOrigins     []string
	ChromePath         string
	UploadDir          string
	Timezone           string
	Company            CompanyInfo
}

// CompanyInfo is printed on exported documents and used for the WhatsApp handoff.
type CompanyInfo struct {
	Name         string
	Document     string
	Address      string
	PhoneDisplay string
	WhatsApp     string
}

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "sa-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		ChromePath:         getEnv("CHROME_PATH", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		Timezone:           getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		Company: CompanyInfo{
			Name:         getEnv("COMPANY_NAME", "Madeiras Ouro Preto"),
			Document:     getEnv("COMPANY_DOCUMENT", ""),
			Address:      getEnv("COMPANY_ADDRESS", "R. Dona Francisca, 4490 - Santo Antônio, Joinville"),
			PhoneDisplay: getEnv("COMPANY_PHONE_DISPLAY", "(47) 98435-0712"),
			WhatsApp:     getEnv("COMPANY_WHATSAPP", "5547984350712"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q is invalid: %w", c.Timezone, err)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// StorageEnabled reports whether exported documents can be pushed to S3.
func (c *Config) StorageEnabled() bool {
	return c.AWSS3Bucket != ""
}

// Location returns the time zone used to bucket dates in reports.
// Validate has already checked the name, so UTC is only a fallback for hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
