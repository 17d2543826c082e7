package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	DBDriver string // sqlite | postgres | memory
	DBDSN    string

	MaxViews      uint32 // upper bound for the views policy
	MaxExpiration uint32 // upper bound for the expiration policy, in minutes
	AllowAdvanced bool   // when false every note is forced to a single view

	BodyLimit int64 // max request body in bytes

	CreateRateRPS   float64
	CreateRateBurst int

	JanitorInterval time.Duration // sweep cadence for expired rows
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getuint32(key string, def uint32) uint32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint32(n)
		}
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		Port:            getint("PORT", 8080),
		DBDriver:        getenv("DB_DRIVER", "sqlite"),
		DBDSN:           getenv("DB_DSN", "file:ember.db?_foreign_keys=on"),
		MaxViews:        getuint32("MAX_VIEWS", 100),
		MaxExpiration:   getuint32("MAX_EXPIRATION", 360),
		AllowAdvanced:   getbool("ALLOW_ADVANCED", true),
		BodyLimit:       getint64("LIMIT", 1<<20),
		CreateRateRPS:   getfloat("CREATE_RATE_RPS", 2.0),
		CreateRateBurst: getint("CREATE_RATE_BURST", 5),
		JanitorInterval: getduration("JANITOR_INTERVAL", time.Minute),
	}
}
