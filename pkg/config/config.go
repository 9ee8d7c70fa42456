package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Invoicing InvoicingConfig
	Cache     CacheConfig
	Money     MoneyConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// InvoicingConfig acceso a la API REST de facturación remota.
type InvoicingConfig struct {
	BaseURL string
	Token   string // se envía en la cabecera X-SESSION
	Timeout time.Duration
}

// CacheConfig caché de lecturas (listados, detalle, catálogo).
type CacheConfig struct {
	Driver        string // memory | redis
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MoneyConfig formato de importes.
type MoneyConfig struct {
	Locale string // BCP 47, ej. es-ES
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, JWT_SECRET, INVOICING_API_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

// LoadFile lee la configuración de un archivo concreto (flag --config de la CLI)
// con las variables de entorno por encima.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: leer %s: %w", path, err)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "invoice-gateway"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "invoice-gateway"),
		},
		Invoicing: InvoicingConfig{
			BaseURL: strings.TrimRight(getString(v, "INVOICING_API_URL", "https://jean-test-api.herokuapp.com"), "/"),
			Token:   getString(v, "INVOICING_API_TOKEN", ""),
			Timeout: getSeconds(v, "INVOICING_API_TIMEOUT_SECONDS", 15),
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(getString(v, "CACHE_DRIVER", "memory")),
			TTL:           getSeconds(v, "CACHE_TTL_SECONDS", 300),
			RedisAddr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getString(v, "REDIS_PASSWORD", ""),
			RedisDB:       getInt(v, "REDIS_DB", 0),
		},
		Money: MoneyConfig{
			Locale: getString(v, "MONEY_LOCALE", "es-ES"),
		},
	}

	if cfg.Cache.Driver != "memory" && cfg.Cache.Driver != "redis" {
		return nil, fmt.Errorf("config: CACHE_DRIVER desconocido %q (memory|redis)", cfg.Cache.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getSeconds(v *viper.Viper, key string, def int) time.Duration {
	return time.Duration(getInt(v, key, def)) * time.Second
}
