package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("top-n", 10, "")
	fs.Int("bins", 20, "")
	fs.String("store", StoreNone, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, 20, c.Bins)
	assert.Equal(t, "./output", c.OutputDir)
	assert.Equal(t, StoreNone, c.Store)
	assert.False(t, c.GenerateReport)
	assert.NoError(t, c.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgFile := filepath.Join(dir, "custom.yaml")
	writeFile(t, cfgFile, "top_n: 5\nbins: 7\ngenerate_report: true\nstore: sqlite\n")

	c, err := Load(cfgFile, testFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 5, c.TopN, "file beats defaults and untouched flags")
	assert.Equal(t, 7, c.Bins)
	assert.True(t, c.GenerateReport)
	assert.Equal(t, StoreSQLite, c.Store)

	t.Setenv("RESTAURANT_TOP_N", "3")
	c, err = Load(cfgFile, testFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 3, c.TopN, "env beats file")

	c, err = Load(cfgFile, testFlags(t, "--top-n=2", "--store=postgres"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.TopN, "flag beats env")
	assert.Equal(t, StorePostgres, c.Store)
	assert.Equal(t, 7, c.Bins)
}

func TestLoadDefaultConfigFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "restaurant-insights.yaml"), "bins: 12\noutput_dir: results\n")

	c, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 12, c.Bins)
	assert.Equal(t, "results", c.OutputDir)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, ".env"), "RESTAURANT_WORKERS=7\n")
	t.Cleanup(func() { os.Unsetenv("RESTAURANT_WORKERS") })

	c, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Workers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml", nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{TopN: 10, Bins: 20, Workers: 4, Store: StoreNone, OutputDir: "out", SQLitePath: "db"}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"top_n zero", func(c *Config) { c.TopN = 0 }, false},
		{"top_n negative", func(c *Config) { c.TopN = -3 }, false},
		{"bins zero", func(c *Config) { c.Bins = 0 }, false},
		{"workers zero", func(c *Config) { c.Workers = 0 }, false},
		{"unknown store", func(c *Config) { c.Store = "mongo" }, false},
		{"sqlite without path", func(c *Config) { c.Store = StoreSQLite; c.SQLitePath = "" }, false},
		{"postgres", func(c *Config) { c.Store = StorePostgres }, true},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := Config{PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "r", PostgresSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=r sslmode=disable", c.DSN())

	c.PostgresDSN = "postgres://x"
	assert.Equal(t, "postgres://x", c.DSN())
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESTAURANT_POSTGRES_DSN", "postgres://u:p@db/r")
	t.Setenv("CHROME_BIN", "/opt/chrome")
	t.Setenv("RESTAURANT_CHROME_BIN", "")

	c, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/r", c.DSN())
	assert.Equal(t, "/opt/chrome", c.ChromeBin)

	t.Setenv("RESTAURANT_CHROME_BIN", "/usr/local/bin/chromium")
	c, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/chromium", c.ChromeBin, "prefixed variable comes first")
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CHROME_BIN", "")
	t.Setenv("RESTAURANT_CHROME_BIN", "")
	t.Setenv("RESTAURANT_POSTGRES_DSN", "")
	writeFile(t, filepath.Join(dir, "restaurant-insights.yaml"),
		"chrome_bin: /snap/bin/chromium\npostgres_dsn: postgres://file\n")

	c, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/snap/bin/chromium", c.ChromeBin)
	assert.Equal(t, "postgres://file", c.DSN())
}
