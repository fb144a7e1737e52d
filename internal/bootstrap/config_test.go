package bootstrap

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, ":3000", cfg.ServerAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.EqualValues(t, 30, cfg.RefreshTokenTTLDays)
	assert.EqualValues(t, 2000, cfg.SyncPullDefaultLimit)
	assert.EqualValues(t, 5000, cfg.SyncPushMaxTotal)
	assert.EqualValues(t, 1000, cfg.SyncPushMaxPerTable)
}

func TestConfig_ApplyDefaults_LeavesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{ServerAddress: ":9000", SyncPullDefaultLimit: 42}
	cfg.applyDefaults()

	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.EqualValues(t, 42, cfg.SyncPullDefaultLimit)
}

func TestConfig_EnvTagsUnique(t *testing.T) {
	t.Parallel()

	configType := reflect.TypeOf(Config{})
	seen := make(map[string]string)

	for i := 0; i < configType.NumField(); i++ {
		field := configType.Field(i)

		tag := field.Tag.Get("env")
		if tag == "" {
			continue
		}

		if existing, ok := seen[tag]; ok {
			t.Fatalf("duplicate env tag %q on fields %s and %s", tag, existing, field.Name)
		}

		seen[tag] = field.Name
	}
}
