package hitl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/hitl/internal/envexpr"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/awaiter"
	"github.com/viant/hitl/service/clarification"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML or JSON; omitted fields keep their defaults.
type Config struct {
	Wait          WaitConfig          `json:"wait" yaml:"wait"`
	Janitor       JanitorConfig       `json:"janitor" yaml:"janitor"`
	Clarification ClarificationConfig `json:"clarification" yaml:"clarification"`
	Events        EventsConfig        `json:"events" yaml:"events"`
	Policy        *policy.Config      `json:"policy,omitempty" yaml:"policy,omitempty"`
}

type WaitConfig struct {
	// TimeoutSec applies to waits that do not set their own timeout.
	TimeoutSec float64 `json:"timeoutSec" yaml:"timeoutSec"`
}

// JanitorConfig controls the periodic sweep of slots nobody cleaned up.
type JanitorConfig struct {
	Disabled     bool    `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	IntervalSec  float64 `json:"intervalSec" yaml:"intervalSec"`
	RetentionSec float64 `json:"retentionSec" yaml:"retentionSec"`
}

type ClarificationConfig struct {
	Fallback string `json:"fallback" yaml:"fallback"`
}

type EventsConfig struct {
	// Buffer sizes each subscriber queue; events for a full queue are dropped.
	Buffer int `json:"buffer" yaml:"buffer"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Wait: WaitConfig{TimeoutSec: awaiter.DefaultTimeout.Seconds()},
		Janitor: JanitorConfig{
			IntervalSec:  60,
			RetentionSec: 600,
		},
		Clarification: ClarificationConfig{Fallback: clarification.DefaultFallback},
		Events:        EventsConfig{Buffer: 256},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Wait.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("wait.timeoutSec must be > 0"))
	}
	if !c.Janitor.Disabled {
		if c.Janitor.IntervalSec <= 0 {
			errs = append(errs, fmt.Errorf("janitor.intervalSec must be > 0"))
		}
		if c.Janitor.RetentionSec <= 0 {
			errs = append(errs, fmt.Errorf("janitor.retentionSec must be > 0"))
		}
	}
	if c.Events.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("events.buffer must be > 0"))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Timeout() time.Duration { return seconds(c.Wait.TimeoutSec) }

func (c *Config) JanitorInterval() time.Duration { return seconds(c.Janitor.IntervalSec) }

func (c *Config) JanitorRetention() time.Duration { return seconds(c.Janitor.RetentionSec) }

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// LoadConfig reads a YAML (or JSON) config from any afs supported URL, for
// example file:///etc/hitl.yaml or s3://bucket/hitl.yaml. ${env.KEY}
// references are expanded before decoding, and fields missing from the
// document keep their defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	expanded := envexpr.Expand(string(data), os.LookupEnv)
	cfg := DefaultConfig()
	if err = yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}
