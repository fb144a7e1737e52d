// Package registry implements the Sync Table Registry (spec.md §4.B): a
// compile-time enumeration of every replicated table, its wire/storage
// field mapping, its conflict target, and its validation schema. Push
// and pull both drive off this registry instead of per-table code.
package registry

// FieldKind is the wire/storage type of one field in a TableDef.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
	KindNullableTimestamp
	KindJSON
)

// Field maps one column between its wire (DTO) name and its storage (DB)
// name, with the kind-specific conversion applied in both directions.
type Field struct {
	DTO  string
	DB   string
	Kind FieldKind
}
