package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"cancha-cli/catalog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CANCHA"

type Config struct {
	Catalog         string          `json:"catalog" split_words:"true"`
	Ledger          string          `json:"ledger" split_words:"true"`
	Timezone        string          `json:"timezone" split_words:"true"`
	Currency        string          `json:"currency" split_words:"true"`
	DurationMenu    []int           `json:"duration_menu" split_words:"true"`
	ConsumeSlots    bool            `json:"consume_slots" split_words:"true"`
	SearchPolicy    string          `json:"search_policy" split_words:"true"`
	DefaultSport    string          `json:"default_sport" split_words:"true"`
	LogLevel        string          `json:"log_level" split_words:"true"`
	FavouriteFields []catalog.Alias `json:"favourite_fields" ignored:"true"`
}

func Default() Config {
	return Config{
		Timezone:     "America/Mexico_City",
		Currency:     "MXN",
		DurationMenu: []int{1, 2, 3, 4},
		ConsumeSlots: true,
		SearchPolicy: "home",
		DefaultSport: "Todos",
		LogLevel:     "warn",
	}
}

// Load builds the configuration from defaults, the JSON file at path (a
// missing file is not an error), a .env file in the working directory and
// CANCHA_* environment variables, in increasing precedence.
func Load(path string) (Config, error) {
	const op = "config.Load"

	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	_ = godotenv.Load()

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("config path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	for _, d := range c.DurationMenu {
		if d <= 0 {
			return fmt.Errorf("duration_menu entries must be positive, got %d", d)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}
