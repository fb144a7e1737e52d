package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInDependencyOrder_ParentsBeforeChildren(t *testing.T) {
	r := New()

	tables := r.InDependencyOrder()
	require.Len(t, tables, 5)

	for i := 1; i < len(tables); i++ {
		assert.LessOrEqual(t, tables[i-1].DependencyOrder, tables[i].DependencyOrder)
	}

	assert.Equal(t, EntityTypes, tables[0].SyncName)
	assert.Equal(t, Operations, tables[len(tables)-1].SyncName)
}

func TestValidate_RejectsMissingRequiredField(t *testing.T) {
	r := New()

	def, ok := r.Lookup(EntityTypes)
	require.True(t, ok)

	err := def.Validate(map[string]any{
		"id":         "et-1",
		"code":       "",
		"name":       "Engine",
		"created_at": float64(1700000000000),
		"updated_at": float64(1700000000000),
	})
	assert.Error(t, err)
}

func TestValidate_AcceptsWellFormedRow(t *testing.T) {
	r := New()

	def, ok := r.Lookup(Entities)
	require.True(t, ok)

	err := def.Validate(map[string]any{
		"id":         "ent-1",
		"type_id":    "et-1",
		"created_at": float64(1700000000000),
		"updated_at": float64(1700000000000),
		"deleted_at": nil,
	})
	assert.NoError(t, err)
}

func TestValidate_RejectsUnknownDataType(t *testing.T) {
	r := New()

	def, ok := r.Lookup(AttributeDefs)
	require.True(t, ok)

	err := def.Validate(map[string]any{
		"id":             "ad-1",
		"entity_type_id": "et-1",
		"code":           "engine_number",
		"name":           "Engine number",
		"data_type":      "not-a-real-type",
		"created_at":     float64(1700000000000),
		"updated_at":     float64(1700000000000),
	})
	assert.Error(t, err)
}

func TestToDbRow_ToWireRow_RoundTrips(t *testing.T) {
	r := New()

	def, ok := r.Lookup(Entities)
	require.True(t, ok)

	wire := map[string]any{
		"id":         "ent-1",
		"type_id":    "et-1",
		"created_at": float64(1700000000000),
		"updated_at": float64(1700000000001),
		"deleted_at": nil,
	}

	db, err := def.ToDbRow(wire)
	require.NoError(t, err)
	assert.Equal(t, "ent-1", db["id"])
	assert.Equal(t, "et-1", db["type_id"])
	assert.Nil(t, db["deleted_at"])

	back, err := def.ToWireRow(db)
	require.NoError(t, err)
	assert.Equal(t, wire["id"], back["id"])
	assert.Equal(t, int64(1700000000000), back["created_at"])
}

func TestResolveDisplayName(t *testing.T) {
	values := map[string]string{"engine_number": `"EN-42"`}

	name, ok := ResolveDisplayName("engine_number", values)
	assert.True(t, ok)
	assert.Equal(t, "EN-42", name)

	_, ok = ResolveDisplayName("", values)
	assert.False(t, ok)

	_, ok = ResolveDisplayName("missing_attr", values)
	assert.False(t, ok)
}
