package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	Addr              string
	DbDsn             string
	JwtSecret         string
	PushAddr          string
	PushTimezone      string
	CheckInStatesRaw  string
	RecordTimeoutMS   int
	AllowedOriginsRaw string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		Addr:              getEnv("APP_ADDR", ":8080"),
		DbDsn:             os.Getenv("DB_DSN"),
		JwtSecret:         os.Getenv("JWT_SECRET"),
		PushAddr:          getEnv("PUSH_ADDR", ":8085"),
		PushTimezone:      getEnv("PUSH_TIMEZONE", "Asia/Karachi"),
		CheckInStatesRaw:  getEnv("PUSH_CHECKIN_STATES", "0,IN"),
		RecordTimeoutMS:   getEnvInt("PUSH_RECORD_TIMEOUT_MS", 5000),
		AllowedOriginsRaw: getEnv("ALLOWED_ORIGINS", ""),
	}

	missing := []string{}
	if cfg.DbDsn == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.JwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return cfg, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

// CheckInStates returns the device state codes that mean check-in; any other
// state code is treated as check-out.
func (c Config) CheckInStates() []string {
	states := []string{}
	for _, state := range strings.Split(c.CheckInStatesRaw, ",") {
		state = strings.TrimSpace(state)
		if state != "" {
			states = append(states, state)
		}
	}
	return states
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
