package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("AEGIS_TEST_SECRET", "from-env")

	in := []byte("secret: ${AEGIS_TEST_SECRET}\nport: ${AEGIS_TEST_PORT:5310}\n")
	out := string(resolveEnv(in))
	assert.Contains(t, out, "secret: from-env")
	assert.Contains(t, out, "port: 5310")
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.yaml")
	content := `
server:
  port: 0
database:
  type: sqlite
  dbname: ":memory:"
jwt:
  secret_key: ${AEGIS_JWT_SECRET:0123456789abcdef0123456789abcdef}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5310, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Duration)
	assert.Equal(t, 30*24*time.Hour, cfg.Token.RefreshDuration)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWT.SecretKey)
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "aegis", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/aegis?sslmode=disable", pg.GetDSN())

	my := DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "aegis"}
	assert.Equal(t, "u:p@tcp(db:3306)/aegis?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := DatabaseConfig{Type: "sqlite", DBName: "/var/lib/aegis/aegis.db"}
	assert.Equal(t, "/var/lib/aegis/aegis.db", lite.GetDSN())

	unknown := DatabaseConfig{Type: "oracle"}
	assert.Equal(t, "", unknown.GetDSN())
}
