package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/opencafe/saiokit/pkg/features"
)

// Section and key names of the saio.config document.
const (
	SectionUserAuth      = "user_auth_config"
	SectionUser          = "user"
	SectionObjectStorage = "objectstorage_api"

	KeyEndpoint                 = "endpoint"
	KeyStrategy                 = "strategy"
	KeyUsername                 = "username"
	KeyPassword                 = "password"
	KeyEnabledFeatures          = "enabled_features"
	KeyTempURLKeyCacheTime      = "tempurl_key_cache_time"
	KeyObjectExpirerRunInterval = "object_expirer_run_interval"
)

// envPrefix namespaces environment overrides
const envPrefix = "SAIO_"

// Config holds the full harness configuration
type Config struct {
	// UserAuth configures how the harness authenticates
	UserAuth UserAuthConfig

	// User holds the test account credentials
	User UserConfig

	// ObjectStorage configures the object storage API test surface
	ObjectStorage ObjectStorageConfig
}

// UserAuthConfig holds the [user_auth_config] section
type UserAuthConfig struct {
	// Endpoint is the base URL of the deployment under test
	Endpoint string
	// Strategy names the authentication strategy, e.g. "saio_tempauth"
	Strategy string
}

// UserConfig holds the [user] section
type UserConfig struct {
	Username string
	Password string
}

// ObjectStorageConfig holds the [objectstorage_api] section
type ObjectStorageConfig struct {
	// EnabledFeatures gates which parts of the API test surface run
	EnabledFeatures features.Set

	// TempURLKeyCacheTime is how long fetched tempurl signing keys may be
	// reused before the account is re-read. Zero disables caching.
	TempURLKeyCacheTime time.Duration

	// ObjectExpirerRunInterval is the sweep interval of the deployment's
	// object expirer. Zero means the deployment runs no expirer and
	// expiry checks are skipped.
	ObjectExpirerRunInterval time.Duration
}

// Default returns the configuration of the reference SAIO deployment
func Default() *Config {
	return &Config{
		UserAuth: UserAuthConfig{
			Endpoint: "http://127.0.0.1:8080/",
			Strategy: "saio_tempauth",
		},
		User: UserConfig{
			Username: "test:tester",
			Password: "testing",
		},
		ObjectStorage: ObjectStorageConfig{
			EnabledFeatures: mustParseFeatures(features.SentinelAll),
		},
	}
}

func mustParseFeatures(raw string) features.Set {
	set, err := features.Parse(raw)
	if err != nil {
		panic(err)
	}
	return set
}

// Load reads a saio.config file, applies SAIO_* environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses the INI document without applying environment overrides or
// validating cross-field constraints. Absent sections and keys fall back to
// the reference defaults.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, data)
	if err != nil {
		return nil, fmt.Errorf("invalid INI document: %w", err)
	}

	if err := checkUniqueKeys(f); err != nil {
		return nil, err
	}

	cfg := Default()

	if sec, err := f.GetSection(SectionUserAuth); err == nil {
		if sec.HasKey(KeyEndpoint) {
			cfg.UserAuth.Endpoint = sec.Key(KeyEndpoint).String()
		}
		if sec.HasKey(KeyStrategy) {
			cfg.UserAuth.Strategy = sec.Key(KeyStrategy).String()
		}
	}

	if sec, err := f.GetSection(SectionUser); err == nil {
		if sec.HasKey(KeyUsername) {
			cfg.User.Username = sec.Key(KeyUsername).String()
		}
		if sec.HasKey(KeyPassword) {
			cfg.User.Password = sec.Key(KeyPassword).String()
		}
	}

	if sec, err := f.GetSection(SectionObjectStorage); err == nil {
		if sec.HasKey(KeyEnabledFeatures) {
			set, err := features.Parse(sec.Key(KeyEnabledFeatures).String())
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: %w", SectionObjectStorage, KeyEnabledFeatures, err)
			}
			cfg.ObjectStorage.EnabledFeatures = set
		}
		if sec.HasKey(KeyTempURLKeyCacheTime) {
			d, err := parseSeconds(sec.Key(KeyTempURLKeyCacheTime).String())
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: %w", SectionObjectStorage, KeyTempURLKeyCacheTime, err)
			}
			cfg.ObjectStorage.TempURLKeyCacheTime = d
		}
		if sec.HasKey(KeyObjectExpirerRunInterval) {
			d, err := parseSeconds(sec.Key(KeyObjectExpirerRunInterval).String())
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: %w", SectionObjectStorage, KeyObjectExpirerRunInterval, err)
			}
			cfg.ObjectStorage.ObjectExpirerRunInterval = d
		}
	}

	return cfg, nil
}

// checkUniqueKeys rejects documents where a key repeats within a section
func checkUniqueKeys(f *ini.File) error {
	for _, sec := range f.Sections() {
		for _, key := range sec.Keys() {
			if len(key.ValueWithShadows()) > 1 {
				return fmt.Errorf("duplicate key %q in section [%s]", key.Name(), sec.Name())
			}
		}
	}
	return nil
}

// applyEnv overrides fields from SAIO_* environment variables
func (c *Config) applyEnv() {
	c.UserAuth.Endpoint = getEnv("AUTH_ENDPOINT", c.UserAuth.Endpoint)
	c.UserAuth.Strategy = getEnv("AUTH_STRATEGY", c.UserAuth.Strategy)
	c.User.Username = getEnv("USERNAME", c.User.Username)
	c.User.Password = getEnv("PASSWORD", c.User.Password)

	if raw := os.Getenv(envPrefix + "ENABLED_FEATURES"); raw != "" {
		if set, err := features.Parse(raw); err == nil {
			c.ObjectStorage.EnabledFeatures = set
		}
	}
	c.ObjectStorage.TempURLKeyCacheTime = getEnvSeconds(
		"TEMPURL_KEY_CACHE_TIME", c.ObjectStorage.TempURLKeyCacheTime)
	c.ObjectStorage.ObjectExpirerRunInterval = getEnvSeconds(
		"OBJECT_EXPIRER_RUN_INTERVAL", c.ObjectStorage.ObjectExpirerRunInterval)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.UserAuth.Endpoint == "" {
		return fmt.Errorf("auth endpoint is required")
	}
	u, err := url.Parse(c.UserAuth.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid auth endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("auth endpoint must be an http or https URL, got %q", c.UserAuth.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("auth endpoint is missing a host: %q", c.UserAuth.Endpoint)
	}

	if c.UserAuth.Strategy == "" {
		return fmt.Errorf("auth strategy is required")
	}
	if c.User.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.User.Password == "" {
		return fmt.Errorf("password is required")
	}

	if c.ObjectStorage.TempURLKeyCacheTime < 0 {
		return fmt.Errorf("tempurl_key_cache_time must not be negative")
	}
	if c.ObjectStorage.ObjectExpirerRunInterval < 0 {
		return fmt.Errorf("object_expirer_run_interval must not be negative")
	}

	return nil
}

// WriteTo emits the configuration in saio.config INI form
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	ini.PrettyFormat = false

	f := ini.Empty()

	authSec, err := f.NewSection(SectionUserAuth)
	if err != nil {
		return 0, err
	}
	if _, err := authSec.NewKey(KeyEndpoint, c.UserAuth.Endpoint); err != nil {
		return 0, err
	}
	if _, err := authSec.NewKey(KeyStrategy, c.UserAuth.Strategy); err != nil {
		return 0, err
	}

	userSec, err := f.NewSection(SectionUser)
	if err != nil {
		return 0, err
	}
	if _, err := userSec.NewKey(KeyUsername, c.User.Username); err != nil {
		return 0, err
	}
	if _, err := userSec.NewKey(KeyPassword, c.User.Password); err != nil {
		return 0, err
	}

	apiSec, err := f.NewSection(SectionObjectStorage)
	if err != nil {
		return 0, err
	}
	if _, err := apiSec.NewKey(KeyEnabledFeatures, c.ObjectStorage.EnabledFeatures.String()); err != nil {
		return 0, err
	}
	if _, err := apiSec.NewKey(KeyTempURLKeyCacheTime, formatSeconds(c.ObjectStorage.TempURLKeyCacheTime)); err != nil {
		return 0, err
	}
	if c.ObjectStorage.ObjectExpirerRunInterval > 0 {
		if _, err := apiSec.NewKey(KeyObjectExpirerRunInterval, formatSeconds(c.ObjectStorage.ObjectExpirerRunInterval)); err != nil {
			return 0, err
		}
	}

	return f.WriteTo(w)
}

// parseSeconds parses a whole-second count as written in saio.config
func parseSeconds(raw string) (time.Duration, error) {
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("expected a whole number of seconds, got %q", raw)
	}
	return time.Duration(secs) * time.Second, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}

// getEnv returns an environment override or the current value
func getEnv(suffix, current string) string {
	if value := os.Getenv(envPrefix + suffix); value != "" {
		return value
	}
	return current
}

// getEnvSeconds returns a whole-second environment override or the current value
func getEnvSeconds(suffix string, current time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + suffix); value != "" {
		if d, err := parseSeconds(value); err == nil {
			return d
		}
	}
	return current
}
