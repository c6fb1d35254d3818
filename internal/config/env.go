package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"simplecrud/internal/domain"
)

// EnvPrefix is optional; APP_ADDR and SIMPLECRUD_APP_ADDR are both honored.
const EnvPrefix = "SIMPLECRUD"

type Env struct {
	AppAddr   string
	GinMode   string
	LogLevel  string
	PublicURL string

	DBDriver string
	DBDSN    string

	JWTSecret   string
	CORSOrigins []string

	ListLimit    int
	ListPushdown bool

	NATSURL           string
	NATSSubjectPrefix string

	RateLimitRPS   float64
	RateLimitBurst int
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("public_url", "")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_dsn", "")
	v.SetDefault("jwt_secret", "super-secret-key-change-me")
	v.SetDefault("cors_allowed_origins", strings.Join(defaultCORSOrigins, ","))
	v.SetDefault("list_limit", domain.DefaultListLimit)
	v.SetDefault("list_pushdown", false)
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject_prefix", "crud")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("rate_limit_burst", 20)
}

// LoadEnv reads configuration from the environment and, when configPath is
// set, from that file (yaml, toml or json by extension). Env wins over file.
func LoadEnv(configPath string) (Env, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Env{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	for _, key := range v.AllKeys() {
		upper := strings.ToUpper(key)
		if err := v.BindEnv(key, upper, EnvPrefix+"_"+upper); err != nil {
			return Env{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	env := Env{
		AppAddr:           strings.TrimSpace(v.GetString("app_addr")),
		GinMode:           strings.TrimSpace(v.GetString("gin_mode")),
		LogLevel:          strings.TrimSpace(v.GetString("log_level")),
		PublicURL:         strings.TrimRight(strings.TrimSpace(v.GetString("public_url")), "/"),
		DBDriver:          strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		DBDSN:             strings.TrimSpace(v.GetString("db_dsn")),
		JWTSecret:         v.GetString("jwt_secret"),
		CORSOrigins:       splitList(v.GetString("cors_allowed_origins")),
		ListLimit:         v.GetInt("list_limit"),
		ListPushdown:      v.GetBool("list_pushdown"),
		NATSURL:           strings.TrimSpace(v.GetString("nats_url")),
		NATSSubjectPrefix: strings.TrimSpace(v.GetString("nats_subject_prefix")),
		RateLimitRPS:      v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:    v.GetInt("rate_limit_burst"),
	}
	if err := env.Validate(); err != nil {
		return Env{}, err
	}
	return env, nil
}

// Validate rejects settings the server cannot start with.
func (e Env) Validate() error {
	if e.AppAddr == "" {
		return fmt.Errorf("app_addr must not be empty")
	}
	switch e.DBDriver {
	case DriverMySQL, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db_driver %q", e.DBDriver)
	}
	if e.ListLimit <= 0 {
		return fmt.Errorf("list_limit must be positive, got %d", e.ListLimit)
	}
	if e.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must not be empty")
	}
	if e.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
