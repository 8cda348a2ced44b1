package hitl_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/viant/hitl"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/clarification"
)

func TestDefaultConfig(t *testing.T) {
	config := hitl.DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, 300*time.Second, config.Timeout())
	assert.Equal(t, time.Minute, config.JanitorInterval())
	assert.Equal(t, 10*time.Minute, config.JanitorRetention())
	assert.Equal(t, clarification.DefaultFallback, config.Clarification.Fallback)
}

func TestConfig_Validate(t *testing.T) {
	type testCase struct {
		name        string
		mutate      func(c *hitl.Config)
		expectError bool
	}
	for _, tc := range []testCase{
		{name: "defaults", mutate: func(*hitl.Config) {}},
		{name: "zero timeout", mutate: func(c *hitl.Config) { c.Wait.TimeoutSec = 0 }, expectError: true},
		{name: "zero interval", mutate: func(c *hitl.Config) { c.Janitor.IntervalSec = 0 }, expectError: true},
		{name: "zero interval with janitor disabled", mutate: func(c *hitl.Config) {
			c.Janitor.IntervalSec = 0
			c.Janitor.Disabled = true
		}},
		{name: "zero buffer", mutate: func(c *hitl.Config) { c.Events.Buffer = 0 }, expectError: true},
		{name: "bad policy", mutate: func(c *hitl.Config) { c.Policy = &policy.Config{Mode: "maybe"} }, expectError: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			config := hitl.DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	t.Setenv("HITL_TEST_FALLBACK", "decide yourself")

	type testCase struct {
		name        string
		content     string
		expectError bool
		check       func(t *testing.T, c *hitl.Config)
	}
	for _, tc := range []testCase{
		{
			name: "partial document keeps defaults",
			content: `wait:
  timeoutSec: 0.5
clarification:
  fallback: ${env.HITL_TEST_FALLBACK}
policy:
  mode: auto
  allow: [deploy-*]
`,
			check: func(t *testing.T, c *hitl.Config) {
				assert.Equal(t, 500*time.Millisecond, c.Timeout())
				assert.Equal(t, "decide yourself", c.Clarification.Fallback)
				assert.Equal(t, 600.0, c.Janitor.RetentionSec)
				require.NotNil(t, c.Policy)
				assert.Equal(t, []string{"deploy-*"}, c.Policy.AllowList)
			},
		},
		{name: "invalid value", content: "events:\n  buffer: -1\n", expectError: true},
		{name: "malformed yaml", content: "wait: [", expectError: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			URL := "mem://localhost/hitl/" + strings.ReplaceAll(tc.name, " ", "_") + ".yaml"
			require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(tc.content)))
			config, err := hitl.LoadConfig(ctx, URL)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, config)
		})
	}

	_, err := hitl.LoadConfig(ctx, "mem://localhost/hitl/missing.yaml")
	assert.Error(t, err)
}
