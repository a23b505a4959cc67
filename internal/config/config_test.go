package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, StockStrict, cfg.Order.StockPolicy)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, MailLog, cfg.Mail.Driver)
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db.internal
  port: 6543
  user: shop
  database: cakes
order:
  stock_policy: clamp
notify:
  relay_interval: 500ms
`), 0o600))

	t.Setenv("CAKESHOP_DATABASE_HOST", "override")
	t.Setenv("CAKESHOP_HTTP_ADDR", ":8080")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "override", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StockClamp, cfg.Order.StockPolicy)
	assert.Equal(t, 500*time.Millisecond, cfg.Notify.RelayInterval)
	assert.Equal(t, "host=override port=6543 user=shop password= dbname=cakes sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfigIgnoresUnprefixedEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  user: cakeshop
  port: 5432
rabbitmq:
  user: guest
log:
  level: debug
`), 0o600))

	t.Setenv("USER", "root")
	t.Setenv("PORT", "8080")
	t.Setenv("NAME", "shell")
	t.Setenv("LEVEL", "error")
	t.Setenv("USERNAME", "root")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "cakeshop", cfg.Database.User)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "cakeshop", cfg.Database.Name)
	assert.Equal(t, "guest", cfg.RabbitMQ.User)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Empty(t, cfg.Mail.Username)
	assert.Equal(t, "Patisserie H.Yuji", cfg.Shop.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigPrefixedKeys(t *testing.T) {
	t.Setenv("CAKESHOP_DATABASE_USER", "shop")
	t.Setenv("CAKESHOP_DATABASE_NAME", "cakes")
	t.Setenv("CAKESHOP_RABBITMQ_PORT", "5673")
	t.Setenv("CAKESHOP_NOTIFY_MAX_ATTEMPTS", "9")
	t.Setenv("CAKESHOP_ORDER_STOCK_POLICY", "clamp")
	t.Setenv("CAKESHOP_MAIL_SHOP_ADDRESS", "shop@example.com")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.Database.User)
	assert.Equal(t, "cakes", cfg.Database.Name)
	assert.Equal(t, 5673, cfg.RabbitMQ.Port)
	assert.Equal(t, 9, cfg.Notify.MaxAttempts)
	assert.Equal(t, StockClamp, cfg.Order.StockPolicy)
	assert.Equal(t, "shop@example.com", cfg.Mail.ShopAddress)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Order.StockPolicy = "oversell"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Mail.Driver = MailSMTP
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Admin.PasswordHash = "$2a$10$abc"
	cfg.Admin.SessionSecret = "short"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
