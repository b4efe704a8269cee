package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	DBDSN    string `envconfig:"DB_DSN" default:"store.db"` // sqlite file in project root
	MediaDir string `envconfig:"MEDIA_DIR" default:"./web/media"`
	Seed     bool   `envconfig:"SEED" default:"true"`
	// AdminEmail is the account allowed through /admin.
	AdminEmail string `envconfig:"ADMIN_EMAIL" default:"admin@vinyltech.test"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[config] %v", err)
	}
	return cfg
}
