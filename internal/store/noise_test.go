package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressNoise_PureTimestampChurnIsSuppressed(t *testing.T) {
	s := &Store{}

	before := map[string]any{"code": "engine", "name": "Engine", "deleted_at": nil, "updated_at": 100}
	after := map[string]any{"code": "engine", "name": "Engine", "deleted_at": nil, "updated_at": 200}

	assert.True(t, s.SuppressNoise("entity_types", before, after))
}

func TestSuppressNoise_SemanticFieldChangeIsNotSuppressed(t *testing.T) {
	s := &Store{}

	before := map[string]any{"code": "engine", "name": "Engine", "deleted_at": nil}
	after := map[string]any{"code": "engine", "name": "Engine Mk2", "deleted_at": nil}

	assert.False(t, s.SuppressNoise("entity_types", before, after))
}

func TestSuppressNoise_UnlistedTableDefaultsToShowEverything(t *testing.T) {
	s := &Store{}

	before := map[string]any{"value_json": `"A"`}
	after := map[string]any{"value_json": `"A"`}

	assert.False(t, s.SuppressNoise("attribute_values", before, after))
}
