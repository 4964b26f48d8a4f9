package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/arcshop/podbridge/internal/domain"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Providers   ProvidersConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ProviderCredential is the fully-resolved credential bundle injected into
// provider clients at construction. Clients never read configuration
// themselves.
type ProviderCredential struct {
	Code      domain.ProviderCode
	APIKey    string
	APISecret string
	ShopID    string
	BaseURL   string
}

// ProvidersConfig holds one credential per configured provider.
type ProvidersConfig struct {
	Printify ProviderCredential
	Gelato   ProviderCredential
	Printful ProviderCredential
}

// Credential returns the credential for the given provider code.
func (p ProvidersConfig) Credential(code domain.ProviderCode) (ProviderCredential, error) {
	var cred ProviderCredential
	switch code {
	case domain.ProviderPrintify:
		cred = p.Printify
	case domain.ProviderGelato:
		cred = p.Gelato
	case domain.ProviderPrintful:
		cred = p.Printful
	default:
		return ProviderCredential{}, fmt.Errorf("unsupported provider: %s", code)
	}
	if cred.APIKey == "" {
		return ProviderCredential{}, fmt.Errorf("provider %s is not configured: API key is missing", code)
	}
	return cred, nil
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "podbridge"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Providers: ProvidersConfig{
			Printify: ProviderCredential{
				Code:    domain.ProviderPrintify,
				APIKey:  getEnvOrViper("PRINTIFY_API_KEY", ""),
				ShopID:  getEnvOrViper("PRINTIFY_SHOP_ID", ""),
				BaseURL: getEnvOrViper("PRINTIFY_BASE_URL", ""),
			},
			Gelato: ProviderCredential{
				Code:      domain.ProviderGelato,
				APIKey:    getEnvOrViper("GELATO_API_KEY", ""),
				APISecret: getEnvOrViper("GELATO_API_SECRET", ""),
				BaseURL:   getEnvOrViper("GELATO_BASE_URL", ""),
			},
			Printful: ProviderCredential{
				Code:    domain.ProviderPrintful,
				APIKey:  getEnvOrViper("PRINTFUL_API_KEY", ""),
				BaseURL: getEnvOrViper("PRINTFUL_BASE_URL", ""),
			},
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// ConfiguredProviders returns the codes of all providers with an API key set.
func (c *Config) ConfiguredProviders() []domain.ProviderCode {
	var codes []domain.ProviderCode
	for _, code := range domain.AllProviders() {
		if _, err := c.Providers.Credential(code); err == nil {
			codes = append(codes, code)
		}
	}
	return codes
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
