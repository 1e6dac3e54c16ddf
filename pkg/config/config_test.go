package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceDocument = `[user_auth_config]
endpoint=http://127.0.0.1:8080/
strategy=saio_tempauth

[user]
username=test:tester
password=testing

[objectstorage_api]
enabled_features=__ALL__
tempurl_key_cache_time=0
#object_expirer_run_interval=60
`

func TestParse_ReferenceDocument(t *testing.T) {
	cfg, err := Parse([]byte(referenceDocument))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080/", cfg.UserAuth.Endpoint)
	assert.Equal(t, "saio_tempauth", cfg.UserAuth.Strategy)
	assert.Equal(t, "test:tester", cfg.User.Username)
	assert.Equal(t, "testing", cfg.User.Password)
	assert.True(t, cfg.ObjectStorage.EnabledFeatures.IsAll())
	assert.Equal(t, time.Duration(0), cfg.ObjectStorage.TempURLKeyCacheTime)

	// The commented-out expirer interval must not be treated as present.
	assert.Equal(t, time.Duration(0), cfg.ObjectStorage.ObjectExpirerRunInterval)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "expirer interval uncommented",
			doc: `[objectstorage_api]
enabled_features=__NONE__
tempurl_key_cache_time=90
object_expirer_run_interval=60
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90*time.Second, cfg.ObjectStorage.TempURLKeyCacheTime)
				assert.Equal(t, 60*time.Second, cfg.ObjectStorage.ObjectExpirerRunInterval)
				assert.True(t, cfg.ObjectStorage.EnabledFeatures.IsNone())
			},
		},
		{
			name: "explicit feature list",
			doc: `[objectstorage_api]
enabled_features=tempurl,bulk_delete
`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.ObjectStorage.EnabledFeatures.Enabled("tempurl"))
				assert.False(t, cfg.ObjectStorage.EnabledFeatures.Enabled("slo"))
			},
		},
		{
			name: "missing sections fall back to defaults",
			doc:  "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default().UserAuth.Endpoint, cfg.UserAuth.Endpoint)
				assert.Equal(t, Default().User.Username, cfg.User.Username)
			},
		},
		{
			name: "duplicate key within a section",
			doc: `[user]
username=test:tester
username=other:user
`,
			wantErr: "duplicate key",
		},
		{
			name: "bad enabled_features sentinel",
			doc: `[objectstorage_api]
enabled_features=__SOMETIMES__
`,
			wantErr: "enabled_features",
		},
		{
			name: "non-numeric cache time",
			doc: `[objectstorage_api]
tempurl_key_cache_time=soon
`,
			wantErr: "tempurl_key_cache_time",
		},
		{
			name:    "not an INI document",
			doc:     "endpoint http://x [", // no section header, no separator
			wantErr: "invalid INI document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "reference config is valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing endpoint",
			mutate:  func(cfg *Config) { cfg.UserAuth.Endpoint = "" },
			wantErr: "endpoint is required",
		},
		{
			name:    "endpoint without scheme",
			mutate:  func(cfg *Config) { cfg.UserAuth.Endpoint = "127.0.0.1:8080" },
			wantErr: "http or https",
		},
		{
			name:    "missing strategy",
			mutate:  func(cfg *Config) { cfg.UserAuth.Strategy = "" },
			wantErr: "strategy is required",
		},
		{
			name:    "missing username",
			mutate:  func(cfg *Config) { cfg.User.Username = "" },
			wantErr: "username is required",
		},
		{
			name:    "missing password",
			mutate:  func(cfg *Config) { cfg.User.Password = "" },
			wantErr: "password is required",
		},
		{
			name:    "negative cache time",
			mutate:  func(cfg *Config) { cfg.ObjectStorage.TempURLKeyCacheTime = -time.Second },
			wantErr: "tempurl_key_cache_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saio.config")
	require.NoError(t, os.WriteFile(path, []byte(referenceDocument), 0644))

	t.Setenv("SAIO_AUTH_ENDPOINT", "http://10.0.0.5:8080/")
	t.Setenv("SAIO_ENABLED_FEATURES", "tempurl")
	t.Setenv("SAIO_OBJECT_EXPIRER_RUN_INTERVAL", "30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080/", cfg.UserAuth.Endpoint)
	assert.True(t, cfg.ObjectStorage.EnabledFeatures.Enabled("tempurl"))
	assert.False(t, cfg.ObjectStorage.EnabledFeatures.Enabled("slo"))
	assert.Equal(t, 30*time.Second, cfg.ObjectStorage.ObjectExpirerRunInterval)

	// Untouched values come from the file.
	assert.Equal(t, "test:tester", cfg.User.Username)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.config"))
	require.Error(t, err)
}

func TestWriteTo_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(referenceDocument))
	require.NoError(t, err)
	cfg.ObjectStorage.ObjectExpirerRunInterval = 60 * time.Second

	var buf bytes.Buffer
	_, err = cfg.WriteTo(&buf)
	require.NoError(t, err)

	reparsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cfg.UserAuth, reparsed.UserAuth)
	assert.Equal(t, cfg.User, reparsed.User)
	assert.Equal(t, cfg.ObjectStorage.ObjectExpirerRunInterval,
		reparsed.ObjectStorage.ObjectExpirerRunInterval)
	assert.Equal(t, cfg.ObjectStorage.EnabledFeatures.String(),
		reparsed.ObjectStorage.EnabledFeatures.String())
}

func TestWritePlan(t *testing.T) {
	cfg := Default()
	cfg.ObjectStorage.ObjectExpirerRunInterval = 60 * time.Second

	var buf bytes.Buffer
	require.NoError(t, cfg.WritePlan(&buf))

	out := buf.String()
	assert.Contains(t, out, "endpoint: http://127.0.0.1:8080/")
	assert.Contains(t, out, "strategy: saio_tempauth")
	assert.Contains(t, out, "enabled_features: __ALL__")
	assert.Contains(t, out, "object_expirer_run_interval_seconds: 60")
	assert.NotContains(t, out, "testing", "plans must not leak the password")
}
