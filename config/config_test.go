package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/remiges-tech/errack/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
	"persistenceunits": {"errack": "postgres://errack@localhost/errack"},
	"redis": {"addr": "localhost:6379"},
	"metricsport": "9100",
	"adminport": "8085",
	"jobs": [
		{"errortype": "JOB", "params": {"EmfName": "errack", "NextRun": "1h"}},
		{"name": "process-once", "errortype": "PROCESS", "params": {"EmfName": "errack", "SingleRun": "true"}}
	]
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppConfigFromFile(t *testing.T) {
	var cfg config.AppConfig
	err := config.LoadAppConfig(&config.File{ConfigFilePath: writeConfig(t, validConfig)}, &cfg)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAppName, cfg.AppName)
	assert.Equal(t, "1m", cfg.RetryInterval)
	assert.Equal(t, time.Minute, cfg.RetryIntervalDuration())
	assert.Equal(t, config.DefaultMaxRetries, cfg.MaxRetries)
	require.Len(t, cfg.Jobs, 2)
	assert.Equal(t, "job-errors", cfg.Jobs[0].Name)
	assert.Equal(t, "process-once", cfg.Jobs[1].Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestFileSource(t *testing.T) {
	var cfg config.AppConfig

	err := config.Load(&config.File{}, &cfg)
	assert.EqualError(t, err, "configFilePath cannot be empty")

	err = config.Load(&config.File{ConfigFilePath: filepath.Join(t.TempDir(), "missing.json")}, &cfg)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = config.Load(&config.File{ConfigFilePath: writeConfig(t, `{"unknownfield": 1}`)}, &cfg)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.AppConfig)
		wantErr string
	}{
		{"valid", func(c *config.AppConfig) {}, ""},
		{"no persistence units", func(c *config.AppConfig) { c.PersistenceUnits = nil }, "PersistenceUnits failed required"},
		{"empty dsn", func(c *config.AppConfig) { c.PersistenceUnits["errack"] = "" }, "failed required"},
		{"no jobs", func(c *config.AppConfig) { c.Jobs = nil }, "Jobs failed required"},
		{"job without error type", func(c *config.AppConfig) { c.Jobs[0].ErrorType = "" }, "ErrorType failed required"},
		{"bad retry interval", func(c *config.AppConfig) { c.RetryInterval = "5 minutes" }, "RetryInterval failed timeexpr"},
		{"bad port", func(c *config.AppConfig) { c.AdminPort = "http" }, "AdminPort failed numeric"},
		{"negative retries", func(c *config.AppConfig) { c.MaxRetries = -1 }, "MaxRetries failed gte"},
		{"missing unit", func(c *config.AppConfig) { delete(c.Jobs[0].Params, "EmfName") }, "job job-errors has no EmfName"},
		{"unknown unit", func(c *config.AppConfig) { c.Jobs[0].Params["EmfName"] = "other" }, "unknown persistence unit other"},
		{"duplicate job", func(c *config.AppConfig) { c.Jobs[1].Name = "job-errors" }, "duplicate job name job-errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.AppConfig{
				PersistenceUnits: map[string]string{"errack": "postgres://localhost/errack"},
				Jobs: []config.JobConfig{
					{ErrorType: "JOB", Params: map[string]string{"EmfName": "errack"}},
					{ErrorType: "TASK", Params: map[string]string{"EmfName": "errack"}},
				},
			}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type fakeRigel struct {
	values map[string]string
	err    error
}

func (f *fakeRigel) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func TestRigelSource(t *testing.T) {
	t.Run("loads config from key", func(t *testing.T) {
		source := &config.Rigel{
			Client: &fakeRigel{values: map[string]string{config.DefaultRigelKey: validConfig}},
			Key:    config.DefaultRigelKey,
		}
		var cfg config.AppConfig
		require.NoError(t, config.LoadAppConfig(source, &cfg))
		assert.Len(t, cfg.Jobs, 2)
	})

	t.Run("missing client", func(t *testing.T) {
		var cfg config.AppConfig
		assert.EqualError(t, config.Load(&config.Rigel{Key: "k"}, &cfg), "rigel client cannot be nil")
	})

	t.Run("rigel error", func(t *testing.T) {
		source := &config.Rigel{Client: &fakeRigel{err: errors.New("etcd unavailable")}, Key: "k"}
		var cfg config.AppConfig
		err := config.Load(source, &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "etcd unavailable")
	})

	t.Run("invalid json", func(t *testing.T) {
		source := &config.Rigel{Client: &fakeRigel{values: map[string]string{"k": "{"}}, Key: "k"}
		var cfg config.AppConfig
		assert.Error(t, config.Load(source, &cfg))
	})
}
