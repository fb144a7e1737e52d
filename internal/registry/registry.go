package registry

import (
	"reflect"
	"sort"
)

// Registry holds every replicated table definition, ordered so parents
// are always applied before children (spec.md §4.B).
type Registry struct {
	tables map[string]TableDef
}

// Table names, exported so callers (store, gate, replica) don't restate
// string literals.
const (
	EntityTypes     = "entity_types"
	AttributeDefs   = "attribute_defs"
	Entities        = "entities"
	AttributeValues = "attribute_values"
	Operations      = "operations"
)

// New builds the registry with the five core/supporting EAV tables
// described in spec.md §3. Dependency order: entity_types(0) ->
// attribute_defs(1) -> entities(2) -> attribute_values(3) ->
// operations(4).
func New() *Registry {
	r := &Registry{tables: make(map[string]TableDef)}

	r.register(TableDef{
		SyncName: EntityTypes,
		Fields: []Field{
			{DTO: "id", DB: "id", Kind: KindString},
			{DTO: "code", DB: "code", Kind: KindString},
			{DTO: "name", DB: "name", Kind: KindString},
			{DTO: "display_name_attr", DB: "display_name_attr", Kind: KindString},
			{DTO: "created_at", DB: "created_at", Kind: KindNullableTimestamp},
			{DTO: "updated_at", DB: "updated_at", Kind: KindNullableTimestamp},
			{DTO: "deleted_at", DB: "deleted_at", Kind: KindNullableTimestamp},
		},
		ConflictTarget:  []string{"id"},
		DependencyOrder: 0,
	}, reflect.TypeOf(EntityTypeWire{}))

	r.register(TableDef{
		SyncName: AttributeDefs,
		Fields: []Field{
			{DTO: "id", DB: "id", Kind: KindString},
			{DTO: "entity_type_id", DB: "entity_type_id", Kind: KindString},
			{DTO: "code", DB: "code", Kind: KindString},
			{DTO: "name", DB: "name", Kind: KindString},
			{DTO: "data_type", DB: "data_type", Kind: KindString},
			{DTO: "required", DB: "required", Kind: KindBool},
			{DTO: "sort_order", DB: "sort_order", Kind: KindNumber},
			{DTO: "meta", DB: "meta", Kind: KindJSON},
			{DTO: "created_at", DB: "created_at", Kind: KindNullableTimestamp},
			{DTO: "updated_at", DB: "updated_at", Kind: KindNullableTimestamp},
			{DTO: "deleted_at", DB: "deleted_at", Kind: KindNullableTimestamp},
		},
		ConflictTarget:  []string{"id"},
		DependencyOrder: 1,
	}, reflect.TypeOf(AttributeDefWire{}))

	r.register(TableDef{
		SyncName: Entities,
		Fields: []Field{
			{DTO: "id", DB: "id", Kind: KindString},
			{DTO: "type_id", DB: "type_id", Kind: KindString},
			{DTO: "created_at", DB: "created_at", Kind: KindNullableTimestamp},
			{DTO: "updated_at", DB: "updated_at", Kind: KindNullableTimestamp},
			{DTO: "deleted_at", DB: "deleted_at", Kind: KindNullableTimestamp},
		},
		ConflictTarget:  []string{"id"},
		DependencyOrder: 2,
	}, reflect.TypeOf(EntityWire{}))

	r.register(TableDef{
		SyncName: AttributeValues,
		Fields: []Field{
			{DTO: "id", DB: "id", Kind: KindString},
			{DTO: "entity_id", DB: "entity_id", Kind: KindString},
			{DTO: "attribute_def_id", DB: "attribute_def_id", Kind: KindString},
			{DTO: "value_json", DB: "value_json", Kind: KindJSON},
			{DTO: "created_at", DB: "created_at", Kind: KindNullableTimestamp},
			{DTO: "updated_at", DB: "updated_at", Kind: KindNullableTimestamp},
			{DTO: "deleted_at", DB: "deleted_at", Kind: KindNullableTimestamp},
		},
		// Invariant 2: one AttributeValue per (entity_id, attribute_def_id).
		// Reinsertion updates, never duplicates - the conflict target is the
		// pair, not the surrogate id.
		ConflictTarget:  []string{"entity_id", "attribute_def_id"},
		DependencyOrder: 3,
	}, reflect.TypeOf(AttributeValueWire{}))

	r.register(TableDef{
		SyncName: Operations,
		Fields: []Field{
			{DTO: "id", DB: "id", Kind: KindString},
			{DTO: "entity_id", DB: "entity_id", Kind: KindString},
			{DTO: "operation_type", DB: "operation_type", Kind: KindString},
			{DTO: "status", DB: "status", Kind: KindString},
			{DTO: "performed_at", DB: "performed_at", Kind: KindNullableTimestamp},
			{DTO: "performed_by", DB: "performed_by", Kind: KindString},
			{DTO: "meta_json", DB: "meta_json", Kind: KindJSON},
			{DTO: "created_at", DB: "created_at", Kind: KindNullableTimestamp},
			{DTO: "updated_at", DB: "updated_at", Kind: KindNullableTimestamp},
			{DTO: "deleted_at", DB: "deleted_at", Kind: KindNullableTimestamp},
		},
		ConflictTarget:  []string{"id"},
		DependencyOrder: 4,
	}, reflect.TypeOf(OperationWire{}))

	return r
}

func (r *Registry) register(t TableDef, wireType reflect.Type) {
	t.wireType = wireType
	r.tables[t.SyncName] = t
}

// Lookup returns the TableDef for syncName and whether it is registered.
func (r *Registry) Lookup(syncName string) (TableDef, bool) {
	t, ok := r.tables[syncName]
	return t, ok
}

// InDependencyOrder returns every registered table ordered so parents are
// always processed before children.
func (r *Registry) InDependencyOrder() []TableDef {
	tables := make([]TableDef, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].DependencyOrder < tables[j].DependencyOrder })

	return tables
}
