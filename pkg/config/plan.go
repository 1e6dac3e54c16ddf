package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/opencafe/saiokit/pkg/features"
)

// Plan is a resolved run plan in a shape CI pipelines can consume. The
// password never appears in a plan.
type Plan struct {
	Endpoint               string       `yaml:"endpoint"`
	Strategy               string       `yaml:"strategy"`
	Username               string       `yaml:"username"`
	EnabledFeatures        features.Set `yaml:"enabled_features"`
	TempURLKeyCacheSeconds int          `yaml:"tempurl_key_cache_seconds"`
	ExpirerRunIntervalSecs int          `yaml:"object_expirer_run_interval_seconds,omitempty"`
	ExpiryChecksEnabled    bool         `yaml:"expiry_checks_enabled"`
}

// Plan derives the run plan from the configuration.
func (c *Config) Plan() Plan {
	return Plan{
		Endpoint:               c.UserAuth.Endpoint,
		Strategy:               c.UserAuth.Strategy,
		Username:               c.User.Username,
		EnabledFeatures:        c.ObjectStorage.EnabledFeatures,
		TempURLKeyCacheSeconds: int(c.ObjectStorage.TempURLKeyCacheTime.Seconds()),
		ExpirerRunIntervalSecs: int(c.ObjectStorage.ObjectExpirerRunInterval.Seconds()),
		ExpiryChecksEnabled:    c.ObjectStorage.ObjectExpirerRunInterval > 0,
	}
}

// WritePlan writes the run plan as YAML.
func (c *Config) WritePlan(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(c.Plan()); err != nil {
		return fmt.Errorf("encoding run plan: %w", err)
	}
	return nil
}
