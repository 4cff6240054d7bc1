package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML под текущую структуру config.go.
const sampleYAML = `
env: "prod"
client:
  base_url: "https://market.campus.example"
  schema: "campus_west"
  user_id: "u-100500"
  user_agent: "campus-market-tui/2.0"
feed:
  page_size: 20
  message_page_size: 30
stub:
  http:
    host: "0.0.0.0"
    port: "8080"
  schema: "campus_west"
  seed: false
timeouts:
  service: "3s"
`

// Минимальный YAML (всё остальное — через дефолты/ENV).
const minimalYAML = `
env: "stage"
`

// Некорректный YAML для проверки сообщений об ошибке.
const brokenYAML = `
env: [unclosed
`

func TestHTTPConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://market.campus.example", cfg.Client.BaseURL)
	require.Equal(t, "campus_west", cfg.Client.Schema)
	require.Equal(t, "u-100500", cfg.Client.UserID)
	require.Equal(t, "campus-market-tui/2.0", cfg.Client.UserAgent)

	require.Equal(t, 20, cfg.Feed.PageSize)
	require.Equal(t, 30, cfg.Feed.MessagePageSize)

	require.Equal(t, "0.0.0.0", cfg.Stub.HTTP.Host)
	require.Equal(t, "8080", cfg.Stub.HTTP.Port)
	require.Equal(t, "campus_west", cfg.Stub.Schema)
	require.False(t, cfg.Stub.Seed)

	require.Equal(t, 3*time.Second, cfg.Timeouts.Service)
}

func TestLoad_Defaults_FromMinimalYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "minimal.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "stage", cfg.Env)
	require.Equal(t, "http://localhost:50080", cfg.Client.BaseURL)
	require.Equal(t, "campus_main", cfg.Client.Schema)
	require.Equal(t, 12, cfg.Feed.PageSize)
	require.Equal(t, 50, cfg.Feed.MessagePageSize)
	require.Equal(t, "50080", cfg.Stub.HTTP.Port)
	require.True(t, cfg.Stub.Seed)
	require.Equal(t, 15*time.Second, cfg.Timeouts.Service)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "campus_west", cfg.Client.Schema)
}

// CONFIG_PATH важнее local.yaml.
func TestLoad_Priority_ENVWinsOverLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	writeFile(t, ".", "local.yaml", `
env: "local"
client: { schema: "campus_local" }
`)

	envPath := writeFile(t, dir, "from_env.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", envPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

// Явный путь важнее CONFIG_PATH и local.yaml.
func TestLoad_Priority_ExplicitWinsOverEnvAndLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	explicit := writeFile(t, dir, "explicit.yaml", `
env: "prod"
client: { schema: "campus_explicit" }
`)
	badFromEnv := writeFile(t, dir, "bad.yaml", brokenYAML)
	t.Setenv("CONFIG_PATH", badFromEnv)
	writeFile(t, ".", "local.yaml", `
env: "local"
client: { schema: "campus_local" }
`)

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "campus_explicit", cfg.Client.Schema)
}

func TestLoad_EnvOverlay_OverridesValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	// Меняем некоторые поля через ENV.
	t.Setenv("CLIENT_SCHEMA", "campus_env")
	t.Setenv("FEED_PAGE_SIZE", "7")
	t.Setenv("STUB_HTTP_PORT", "18080")
	t.Setenv("SERVICE_TIMEOUT", "5s")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "campus_env", cfg.Client.Schema)
	require.Equal(t, 7, cfg.Feed.PageSize)
	require.Equal(t, "18080", cfg.Stub.HTTP.Port)
	require.Equal(t, 5*time.Second, cfg.Timeouts.Service)
}

// «Только ENV» без файлов.
func TestLoad_EnvOnly_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	t.Setenv("ENV", "dev")
	t.Setenv("CLIENT_BASE_URL", "http://10.0.0.1:50080")
	t.Setenv("CLIENT_USER_ID", "u-env")
	t.Setenv("FEED_MESSAGE_PAGE_SIZE", "25")
	t.Setenv("STUB_HTTP_HOST", "127.0.0.1")
	t.Setenv("SERVICE_TIMEOUT", "2s")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "http://10.0.0.1:50080", cfg.Client.BaseURL)
	require.Equal(t, "u-env", cfg.Client.UserID)
	require.Equal(t, 25, cfg.Feed.MessagePageSize)
	require.Equal(t, "127.0.0.1", cfg.Stub.HTTP.Host)
	require.Equal(t, 2*time.Second, cfg.Timeouts.Service)
}

func TestMustLoad_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "ok.yaml", minimalYAML)

	cfg := MustLoad(cfgPath)
	require.NotNil(t, cfg)
	require.Equal(t, "stage", cfg.Env)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
