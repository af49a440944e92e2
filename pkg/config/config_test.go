package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "inventario-pyme", cfg.App.Name)
	assert.Equal(t, 43200, cfg.JWT.Expiration)
	assert.Equal(t, AlertProviderLog, cfg.Alerts.Provider)
	assert.Equal(t, 10*time.Second, cfg.Alerts.SendTimeout)
	assert.Equal(t, 3, cfg.Tx.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Tx.RetryBackoff)
	assert.Equal(t, 25, cfg.DB.MaxConns)
}

func TestLoad_SinJWTSecretFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("ALERT_PROVIDER", "SendGrid")
	t.Setenv("SENDGRID_API_KEY", "SG.x")
	t.Setenv("ALERT_SEND_TIMEOUT_SECONDS", "3")
	t.Setenv("TX_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AlertProviderSendGrid, cfg.Alerts.Provider)
	assert.Equal(t, 3*time.Second, cfg.Alerts.SendTimeout)
	assert.Equal(t, 5, cfg.Tx.MaxAttempts)
}

func TestValidate_ProveedorIncompleto(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	v.Set("ALERT_PROVIDER", "smtp")

	err := build(v).Validate()
	assert.ErrorContains(t, err, "SMTP_HOST")

	v.Set("ALERT_PROVIDER", "paloma")
	err = build(v).Validate()
	assert.ErrorContains(t, err, "desconocido")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
