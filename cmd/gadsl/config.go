package main

import (
	"github.com/Ezhil1K/ChemSure/config"
	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Config is read from the environment, after an optional .env file
type Config struct {
	APIURL         string `env:"GADSL_API_URL,default=http://localhost:5000"`
	APIToken       string `env:"GADSL_API_TOKEN"`
	TimeoutSeconds int    `env:"GADSL_TIMEOUT_SECONDS,default=0"`
	LogLevel       string `env:"LOG_LEVEL,default=warn"`
	Colours        bool   `env:"GADSL_COLOURS,default=true"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) lookup() *config.LookupConfig {
	return &config.LookupConfig{
		BaseURL:        c.APIURL,
		APIToken:       c.APIToken,
		TimeoutSeconds: c.TimeoutSeconds,
	}
}
