package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	// PublicKeyFile points at the PEM-encoded Ed25519 public key minted by the
	// chat server. The notify server never holds the signing half.
	PublicKeyFile string `yaml:"public_key_file"`
}

type NotifyConfig struct {
	// Channels are the Postgres NOTIFY channels the listener subscribes to.
	Channels []string `yaml:"channels"`
	// BufferSize bounds the per-connection event buffer; overflow drops the
	// oldest undelivered event for that connection.
	BufferSize int `yaml:"buffer_size"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth   AuthConfig   `yaml:"auth"`
	Notify NotifyConfig `yaml:"notify"`
}

// LoadConfig reads config/notify.yaml (or $NOTIFY_CONFIG) and applies env
// overrides for the values that differ between deployments.
func LoadConfig() *Config {
	path := os.Getenv("NOTIFY_CONFIG")
	if path == "" {
		path = "config/notify.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 6687
	}
	if len(cfg.Notify.Channels) == 0 {
		cfg.Notify.Channels = []string{"chat_updated", "chat_message_created"}
	}
	if cfg.Notify.BufferSize <= 0 {
		cfg.Notify.BufferSize = 256
	}
}

func applyEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if pk := os.Getenv("NOTIFY_PUBLIC_KEY_FILE"); pk != "" {
		cfg.Auth.PublicKeyFile = pk
	}
	if port := os.Getenv("NOTIFY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}
