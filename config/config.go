package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
    Server struct {
        Port string `env:"SERVER_PORT" envDefault:"8080"`
    }

    Database struct {
        URL string `env:"DB_URL"`
    }

    Scheduler struct {
        RunHour       int `env:"BATCH_RUN_HOUR" envDefault:"2"`
        RunMinute     int `env:"BATCH_RUN_MINUTE" envDefault:"0"`
        HorizonDays   int `env:"SLOT_HORIZON_DAYS" envDefault:"30"`
        BatchSize     int `env:"SLOT_BATCH_SIZE" envDefault:"500"`
        RetentionDays int `env:"SLOT_RETENTION_DAYS" envDefault:"30"`
    }

    SMTP struct {
        Host     string `env:"SMTP_HOST"`
        Port     int    `env:"SMTP_PORT" envDefault:"587"`
        User     string `env:"SMTP_USER"`
        Password string `env:"SMTP_PASSWORD"`
        ReportTo string `env:"JOB_REPORT_EMAIL"`
    }
}

// Load reads .env when present, then parses configuration from the
// environment.
func Load() (*Config, error) {
    _ = godotenv.Load()

    cfg := &Config{}
    if err := env.Parse(cfg); err != nil {
        return nil, err
    }
    return cfg, nil
}

// ReportMailEnabled reports whether the nightly job summary should be mailed.
func (c *Config) ReportMailEnabled() bool {
    return c.SMTP.Host != "" && c.SMTP.ReportTo != ""
}
