package cmd

import (
	"testing"
	"time"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindEnvMap(t *testing.T) {
	t.Run("string_from_explicit_env", func(t *testing.T) {
		t.Setenv("TEST_RELAY_URL", "https://hooks.example.com/services/T000/B000/XXXX")
		var url string
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*string]boundEnvVar[string]{
			&url: {Name: "test-relay-url", Env: helpers.Ptr("TEST_RELAY_URL")},
		})

		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, "https://hooks.example.com/services/T000/B000/XXXX", url)
		assert.Contains(t, cmd.PersistentFlags().Lookup("test-relay-url").Usage, "[TEST_RELAY_URL]")
	})

	t.Run("string_from_derived_env", func(t *testing.T) {
		t.Setenv("TEST_SETTINGS_SOURCE", "header")
		source := "static"
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*string]boundEnvVar[string]{
			&source: {Name: "test-settings-source"},
		})

		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, "header", source)
	})

	t.Run("flag_overrides_env", func(t *testing.T) {
		t.Setenv("TEST_FLAG_PRIORITY", "from-env")
		var value string
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*string]boundEnvVar[string]{
			&value: {Name: "test-flag-priority"},
		})

		require.NoError(t, cmd.ParseFlags([]string{"--test-flag-priority", "from-flag"}))
		assert.Equal(t, "from-flag", value)
	})

	t.Run("default_kept_without_env", func(t *testing.T) {
		timeout := 3 * time.Second
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*time.Duration]boundEnvVar[time.Duration]{
			&timeout: {Name: "test-unset-timeout"},
		})

		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, 3*time.Second, timeout)
	})

	t.Run("bool_and_duration_from_env", func(t *testing.T) {
		t.Setenv("TEST_ALLOW_INSECURE", "true")
		t.Setenv("TEST_WEBHOOK_TIMEOUT", "250ms")
		var insecure bool
		var timeout time.Duration
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*bool]boundEnvVar[bool]{
			&insecure: {Name: "test-allow-insecure"},
		})
		bindEnvMap(cmd, map[*time.Duration]boundEnvVar[time.Duration]{
			&timeout: {Name: "test-webhook-timeout"},
		})

		require.NoError(t, cmd.ParseFlags(nil))
		assert.True(t, insecure)
		assert.Equal(t, 250*time.Millisecond, timeout)
	})

	t.Run("count", func(t *testing.T) {
		var verbosity int
		cmd := &cobra.Command{Use: "test"}
		bindEnvMap(cmd, map[*int]boundEnvVar[int]{
			&verbosity: {Name: "test-verbosity", Short: helpers.Ptr("x")},
		})

		require.NoError(t, cmd.ParseFlags([]string{"-xx"}))
		assert.Equal(t, 2, verbosity)
	})
}
