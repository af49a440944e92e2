package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Alerts AlertsConfig
	Tx     TxConfig
	Google GoogleConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo (ej. DATABASE_URL de Supabase).
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
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

// Proveedores de alertas por email.
const (
	AlertProviderSMTP     = "smtp"
	AlertProviderSendGrid = "sendgrid"
	AlertProviderLog      = "log"
)

// AlertsConfig configuración del envío de alertas de stock bajo.
type AlertsConfig struct {
	Provider       string // smtp | sendgrid | log
	SendTimeout    time.Duration
	FromEmail      string
	FromName       string
	SendGridAPIKey string
	SendGridURL    string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
}

// TxConfig reintentos del motor de stock ante conflictos de bloqueo.
type TxConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// GoogleConfig credenciales para importar desde Google Sheets.
type GoogleConfig struct {
	CredentialsFile string // JSON de service account; vacío = import por Sheets deshabilitado
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, ALERT_PROVIDER, etc.
func Load() (*Config, error) {
	v := viper.New()

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

	cfg := build(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func build(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-pyme"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "inventario_pyme"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 43200), // 30 días
			Issuer:     getString(v, "JWT_ISSUER", "inventario-pyme"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Alerts: AlertsConfig{
			Provider:       strings.ToLower(getString(v, "ALERT_PROVIDER", AlertProviderLog)),
			SendTimeout:    time.Duration(getInt(v, "ALERT_SEND_TIMEOUT_SECONDS", 10)) * time.Second,
			FromEmail:      getString(v, "ALERT_FROM_EMAIL", "alertas@inventario-pyme.cl"),
			FromName:       getString(v, "ALERT_FROM_NAME", "Inventario PYME"),
			SendGridAPIKey: getString(v, "SENDGRID_API_KEY", ""),
			SendGridURL:    getString(v, "SENDGRID_URL", "https://api.sendgrid.com/v3/mail/send"),
			SMTPHost:       getString(v, "SMTP_HOST", ""),
			SMTPPort:       getInt(v, "SMTP_PORT", 587),
			SMTPUser:       getString(v, "SMTP_USER", ""),
			SMTPPassword:   getString(v, "SMTP_PASSWORD", ""),
		},
		Tx: TxConfig{
			MaxAttempts:  getInt(v, "TX_MAX_ATTEMPTS", 3),
			RetryBackoff: time.Duration(getInt(v, "TX_RETRY_BACKOFF_MS", 50)) * time.Millisecond,
		},
		Google: GoogleConfig{
			CredentialsFile: getString(v, "GOOGLE_CREDENTIALS_FILE", ""),
		},
	}
}

// Validate verifica claves obligatorias y combinaciones inválidas.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET es obligatorio"))
	}
	switch c.Alerts.Provider {
	case AlertProviderLog:
	case AlertProviderSendGrid:
		if c.Alerts.SendGridAPIKey == "" {
			errs = append(errs, errors.New("config: SENDGRID_API_KEY es obligatorio con ALERT_PROVIDER=sendgrid"))
		}
	case AlertProviderSMTP:
		if c.Alerts.SMTPHost == "" {
			errs = append(errs, errors.New("config: SMTP_HOST es obligatorio con ALERT_PROVIDER=smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: ALERT_PROVIDER desconocido %q", c.Alerts.Provider))
	}
	if c.Alerts.SendTimeout <= 0 {
		errs = append(errs, errors.New("config: ALERT_SEND_TIMEOUT_SECONDS debe ser positivo"))
	}
	if c.Tx.MaxAttempts < 1 {
		errs = append(errs, errors.New("config: TX_MAX_ATTEMPTS debe ser >= 1"))
	}
	return errors.Join(errs...)
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
