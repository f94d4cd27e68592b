package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/rpattn/scenariogen/internal/db"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Interpreter InterpreterConfig
}

type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// DatabaseConfig wraps the connection settings plus an enable switch;
// without a database the server keeps scenarios in memory only.
type DatabaseConfig struct {
	Enabled bool
	db.Config
}

type InterpreterConfig struct {
	// Backend selects the interpreter: "heuristic" or "gemini".
	Backend string
	Model   string
	APIKey  string
}

// Load reads config.yaml from the given path, with environment overrides
// prefixed APP (e.g. APP_SERVER_ADDR, APP_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Config: db.DefaultConfig(),
		},
		Interpreter: InterpreterConfig{
			Backend: "heuristic",
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // allow environment overrides

	for _, key := range []string{
		"server.addr", "server.cors_origins",
		"database.enabled", "database.host", "database.port",
		"database.user", "database.password", "database.dbname", "database.sslmode",
		"interpreter.backend", "interpreter.model", "interpreter.api_key",
	} {
		_ = v.BindEnv(key)
	}

	// Config file is optional; defaults plus env vars are a valid setup.
	_ = v.ReadInConfig()

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.cors_origins") {
		cfg.Server.CORSOrigins = v.GetStringSlice("server.cors_origins")
	}
	if v.IsSet("database.enabled") {
		cfg.Database.Enabled = v.GetBool("database.enabled")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("interpreter.backend") {
		cfg.Interpreter.Backend = v.GetString("interpreter.backend")
	}
	if v.IsSet("interpreter.model") {
		cfg.Interpreter.Model = v.GetString("interpreter.model")
	}
	if v.IsSet("interpreter.api_key") {
		cfg.Interpreter.APIKey = v.GetString("interpreter.api_key")
	}

	return cfg, nil
}
