package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
colly:
  user_agent: "Mozilla/5.0"
  timeout_sec: 30
  insecure_skip_verify: true
  max_body_size: 0
  enable_cookie_jar: true
  headers:
    Accept-Language: "zh-TW,zh;q=0.9"
output:
  dir: "./output"
logging:
  level: "info"
crawl:
  parallelism: 4
  index_batch_size: 500
elasticsearch:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "Mozilla/5.0", cfg.Colly.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Colly.Timeout())
	assert.True(t, cfg.Colly.InsecureSkipVerify)
	assert.True(t, cfg.Colly.EnableCookieJar)
	assert.Equal(t, "zh-TW,zh;q=0.9", cfg.Colly.Headers["Accept-Language"])
	assert.True(t, filepath.IsAbs(cfg.Output.Dir))
	assert.Equal(t, 4, cfg.Crawl.Parallelism)
	assert.False(t, cfg.Elasticsearch.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("colly: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.Colly.UserAgent = "ua"
		c.Colly.TimeoutSec = 10
		c.Output.Dir = "out"
		c.Logging.Level = "debug"
		c.Crawl.Parallelism = 1
		c.Crawl.IndexBatchSize = 100
		return c
	}

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing user agent", func(c *Config) { c.Colly.UserAgent = "" }, ErrMissingUserAgent},
		{"zero timeout", func(c *Config) { c.Colly.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.Colly.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"missing output dir", func(c *Config) { c.Output.Dir = "" }, ErrMissingOutputDir},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
		{"zero parallelism", func(c *Config) { c.Crawl.Parallelism = 0 }, ErrInvalidParallelism},
		{"zero batch size", func(c *Config) { c.Crawl.IndexBatchSize = 0 }, ErrInvalidBatchSize},
		{"es without address", func(c *Config) {
			c.Elasticsearch.Enabled = true
			c.Elasticsearch.Index = "building_permits"
		}, ErrMissingESAddress},
		{"es without index", func(c *Config) {
			c.Elasticsearch.Enabled = true
			c.Elasticsearch.Address = "http://localhost:9200"
		}, ErrMissingESIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.modify(&c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseConfigWrapsValidationError(t *testing.T) {
	_, err := ParseConfig([]byte("colly:\n  user_agent: ua\n"))
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}
