package config

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		// URL of the identity provider's introspection endpoint used to map
		// a bearer token to a stable user identifier.
		IntrospectionURL string `yaml:"introspection_url"`
		// DevUserID substitutes for introspection in non-production setups.
		// Leave empty in production.
		DevUserID string `yaml:"dev_user_id"`
	} `yaml:"auth"`
	Google struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
		APIBaseURL   string `yaml:"api_base_url"`
		TokenURL     string `yaml:"token_url"`
		UserinfoURL  string `yaml:"userinfo_url"`
		AuthURL      string `yaml:"auth_url"`
	} `yaml:"google"`
	OpenAI struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`
	Encryption struct {
		// Key is the base64-encoded 32-byte sealing key. The YAML value may
		// reference an environment variable (e.g. ${ENCRYPTION_KEY}).
		Key string `yaml:"key"`
	} `yaml:"encryption"`
	Scheduler struct {
		Enabled bool   `yaml:"enabled"`
		Spec    string `yaml:"spec"`
	} `yaml:"scheduler"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file. Values of the
// form ${VAR} are expanded from the environment before decoding, so secrets
// stay out of the file itself.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Google.APIBaseURL == "" {
		c.Google.APIBaseURL = "https://mybusiness.googleapis.com/v4"
	}
	if c.Google.TokenURL == "" {
		c.Google.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if c.Google.UserinfoURL == "" {
		c.Google.UserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	}
	if c.Google.AuthURL == "" {
		c.Google.AuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Scheduler.Spec == "" {
		c.Scheduler.Spec = "*/15 * * * *"
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
}

// SealingKey decodes the configured base64 sealing key.
func (c *Config) SealingKey() ([]byte, error) {
	if c.Encryption.Key == "" {
		return nil, fmt.Errorf("encryption key not configured")
	}
	key, err := base64.StdEncoding.DecodeString(c.Encryption.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	return key, nil
}
