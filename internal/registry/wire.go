package registry

// Wire DTOs mirror the snake_case, millisecond-timestamp wire format
// described in spec.md §6. A table's schema validates an inbound row by
// round-tripping it through the matching struct below and running
// validator tags against it; the registry never needs per-table
// hand-written validation code.

// EntityTypeWire is the push/pull wire shape of an EntityType row.
type EntityTypeWire struct {
	ID              string `json:"id" validate:"required,max=64"`
	Code            string `json:"code" validate:"required,max=100"`
	Name            string `json:"name" validate:"required,max=256"`
	DisplayNameAttr string `json:"display_name_attr" validate:"omitempty,max=100"`
	CreatedAt       int64  `json:"created_at" validate:"required"`
	UpdatedAt       int64  `json:"updated_at" validate:"required"`
	DeletedAt       *int64 `json:"deleted_at"`
}

// AttributeDefWire is the push/pull wire shape of an AttributeDef row.
type AttributeDefWire struct {
	ID           string `json:"id" validate:"required,max=64"`
	EntityTypeID string `json:"entity_type_id" validate:"required,max=64"`
	Code         string `json:"code" validate:"required,max=100"`
	Name         string `json:"name" validate:"required,max=256"`
	DataType     string `json:"data_type" validate:"required,oneof=text number boolean date json link"`
	Required     bool   `json:"required"`
	SortOrder    int    `json:"sort_order"`
	Meta         string `json:"meta"`
	CreatedAt    int64  `json:"created_at" validate:"required"`
	UpdatedAt    int64  `json:"updated_at" validate:"required"`
	DeletedAt    *int64 `json:"deleted_at"`
}

// EntityWire is the push/pull wire shape of an Entity row.
type EntityWire struct {
	ID        string `json:"id" validate:"required,max=64"`
	TypeID    string `json:"type_id" validate:"required,max=64"`
	CreatedAt int64  `json:"created_at" validate:"required"`
	UpdatedAt int64  `json:"updated_at" validate:"required"`
	DeletedAt *int64 `json:"deleted_at"`
}

// AttributeValueWire is the push/pull wire shape of an AttributeValue row.
type AttributeValueWire struct {
	ID             string `json:"id" validate:"required,max=64"`
	EntityID       string `json:"entity_id" validate:"required,max=64"`
	AttributeDefID string `json:"attribute_def_id" validate:"required,max=64"`
	ValueJSON      string `json:"value_json" validate:"required"`
	CreatedAt      int64  `json:"created_at" validate:"required"`
	UpdatedAt      int64  `json:"updated_at" validate:"required"`
	DeletedAt      *int64 `json:"deleted_at"`
}

// OperationWire is the push/pull wire shape of an Operation row.
type OperationWire struct {
	ID            string `json:"id" validate:"required,max=64"`
	EntityID      string `json:"entity_id" validate:"required,max=64"`
	OperationType string `json:"operation_type" validate:"required,max=100"`
	Status        string `json:"status" validate:"required,max=64"`
	PerformedAt   *int64 `json:"performed_at"`
	PerformedBy   string `json:"performed_by"`
	MetaJSON      string `json:"meta_json"`
	CreatedAt     int64  `json:"created_at" validate:"required"`
	UpdatedAt     int64  `json:"updated_at" validate:"required"`
	DeletedAt     *int64 `json:"deleted_at"`
}
