package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pokerroom-server/internal/util"
)

// Config provides configuration for the poker room server
type Config struct {
	loaded bool

	ListenAddr     string `yaml:"listenAddr" envconfig:"listen_addr"`
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Room struct {
		// TurnTimeoutSeconds is how long a player may sit on the clock
		// before being auto-folded
		TurnTimeoutSeconds int `yaml:"turnTimeoutSeconds" envconfig:"turn_timeout_seconds"`
		// ReconnectGraceSeconds is how long a disconnected player's seat
		// is held before it is removed
		ReconnectGraceSeconds int `yaml:"reconnectGraceSeconds" envconfig:"reconnect_grace_seconds"`
		// DefaultChips is the stack a player sits down with
		DefaultChips int `yaml:"defaultChips" envconfig:"default_chips"`
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
func Load() error {
	config = Config{
		ListenAddr: ":8080",
	}
	config.Room.TurnTimeoutSeconds = 30
	config.Room.ReconnectGraceSeconds = 60
	config.Room.DefaultChips = 1000

	configFile := util.Getenv("PRS_CONFIG_FILE", "config.yaml")
	if file, err := os.Open(configFile); err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("prs", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
