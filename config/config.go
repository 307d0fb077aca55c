package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver      string
	DBDSN         string
	MongoURI      string
	MongoDatabase string

	JWTSecret            string
	JWTTTL               time.Duration
	TokenCleanupInterval time.Duration

	CORSOrigins []string
	LogLevel    string

	WSSendBuffer      int
	RateLimit         int
	RateWindow        time.Duration
	AuthRatePerMinute int
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("wastezero", pflag.ContinueOnError)
	fs.String("port", "", "HTTP listen port")
	fs.String("db-driver", "", "storage backend: sqlite, mysql or mongo")
	fs.String("db-dsn", "", "gorm DSN for sqlite/mysql")
	fs.String("log-level", "", "logrus level")
	return fs
}

// Load reads .env (if present), the environment and fs. Changed flags win over
// the environment, which wins over defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "4000")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("db_dsn", "wastezero.db")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "wastezero")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("token_cleanup_interval", "1h")
	v.SetDefault("cors_origins", "http://localhost:5173,http://localhost:5174")
	v.SetDefault("log_level", "info")
	v.SetDefault("ws_send_buffer", 256)
	v.SetDefault("rate_limit", 100)
	v.SetDefault("rate_window", "1s")
	v.SetDefault("auth_rate_per_minute", 10)
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{
			"port":      "port",
			"db_driver": "db-driver",
			"db_dsn":    "db-dsn",
			"log_level": "log-level",
		} {
			if f := fs.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := &Config{
		Port:                 v.GetString("port"),
		GinMode:              v.GetString("gin_mode"),
		DBDriver:             strings.ToLower(v.GetString("db_driver")),
		DBDSN:                v.GetString("db_dsn"),
		MongoURI:             v.GetString("mongo_uri"),
		MongoDatabase:        v.GetString("mongo_database"),
		JWTSecret:            v.GetString("jwt_secret"),
		JWTTTL:               v.GetDuration("jwt_ttl"),
		TokenCleanupInterval: v.GetDuration("token_cleanup_interval"),
		CORSOrigins:          splitList(v.GetString("cors_origins")),
		LogLevel:             v.GetString("log_level"),
		WSSendBuffer:         v.GetInt("ws_send_buffer"),
		RateLimit:            v.GetInt("rate_limit"),
		RateWindow:           v.GetDuration("rate_window"),
		AuthRatePerMinute:    v.GetInt("auth_rate_per_minute"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for driver %q", c.DBDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.WSSendBuffer)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
