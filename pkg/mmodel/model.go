// Package mmodel holds the EAV data model described in spec.md §3: the
// core and supporting entities every other package operates on.
package mmodel

import "time"

// Role is an actor's authorization level, used by the Change-Request Gate.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// IsElevated reports whether the role bypasses ownership checks.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Actor is the resolved identity behind an inbound request, produced by
// the bearer-JWT middleware in internal/auth.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// DataType enumerates the wire/storage type of an AttributeDef value.
type DataType string

const (
	DataTypeText    DataType = "text"
	DataTypeNumber  DataType = "number"
	DataTypeBoolean DataType = "boolean"
	DataTypeDate    DataType = "date"
	DataTypeJSON    DataType = "json"
	DataTypeLink    DataType = "link"
)

// EntityType is a named class of business object (engine, part, employee, customer, ...).
type EntityType struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	DisplayNameAttr string     `json:"display_name_attr,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// AttributeDef is a named field on an EntityType.
type AttributeDef struct {
	ID           string     `json:"id"`
	EntityTypeID string     `json:"entity_type_id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	DataType     DataType   `json:"data_type"`
	Required     bool       `json:"required"`
	SortOrder    int        `json:"sort_order"`
	Meta         string     `json:"meta,omitempty"` // JSON-encoded, e.g. link-target type
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Entity is an instance of an EntityType.
type Entity struct {
	ID         string     `json:"id"`
	TypeID     string     `json:"type_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	SyncStatus string     `json:"sync_status,omitempty"`
}

// AttributeValue is a (entity, attribute_def) pair with a JSON-encoded value.
type AttributeValue struct {
	ID             string     `json:"id"`
	EntityID       string     `json:"entity_id"`
	AttributeDefID string     `json:"attribute_def_id"`
	ValueJSON      string     `json:"value_json"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	SyncStatus     string     `json:"sync_status,omitempty"`
}

// Operation is an event on an entity (checklist, work order, supply request, repair step).
type Operation struct {
	ID            string     `json:"id"`
	EntityID      string     `json:"entity_id"`
	OperationType string     `json:"operation_type"`
	Status        string     `json:"status"`
	PerformedAt   *time.Time `json:"performed_at,omitempty"`
	PerformedBy   string     `json:"performed_by,omitempty"`
	MetaJSON      string     `json:"meta_json,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	SyncStatus    string     `json:"sync_status,omitempty"`
}

// RowOwner assigns a custodian to each mutable record. Inserted once on
// creation, never updated — see Invariant 7.
type RowOwner struct {
	TableName string    `json:"table_name"`
	RowID     string    `json:"row_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeOp distinguishes an upsert from a soft delete in the change log.
type ChangeOp string

const (
	ChangeOpUpsert ChangeOp = "upsert"
	ChangeOpDelete ChangeOp = "delete"
)

// ChangeLog is the pull-side outbound log produced by the Authoritative Store.
type ChangeLog struct {
	ServerSeq  uint64    `json:"server_seq"`
	TableName  string    `json:"table_name"`
	RowID      string    `json:"row_id"`
	Op         ChangeOp  `json:"op"`
	PayloadRaw string    `json:"payload_json"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChangeRequestStatus is the state-machine status of a ChangeRequest.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApplied  ChangeRequestStatus = "applied"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

// ChangeRequest is a pending proposal for a change to a foreign-owned record.
type ChangeRequest struct {
	ID                string              `json:"id"`
	TableName         string              `json:"table_name"`
	RowID             string              `json:"row_id"`
	BeforeJSON        string              `json:"before_json,omitempty"`
	AfterJSON         string              `json:"after_json"`
	ChangeAuthorID    string              `json:"change_author_id"`
	ChangeAuthorName  string              `json:"change_author_username"`
	RecordOwnerID     string              `json:"record_owner_id"`
	RecordOwnerName   string              `json:"record_owner_username"`
	Status            ChangeRequestStatus `json:"status"`
	DecidedByID       string              `json:"decided_by_id,omitempty"`
	DecidedByUsername string              `json:"decided_by_username,omitempty"`
	DecidedAt         *time.Time          `json:"decided_at,omitempty"`
	Note              string              `json:"note,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// LedgerEntry is the immutable, hash-chained unit of the Ledger Store.
type LedgerEntry struct {
	Seq       uint64    `json:"seq"`
	TS        time.Time `json:"ts"`
	Op        ChangeOp  `json:"op"`
	TableName string    `json:"table"`
	RowID     string    `json:"row_id"`
	RowJSON   string    `json:"row"`
	ActorID   string    `json:"actor_user_id"`
	ActorName string    `json:"actor_username"`
	ActorRole Role      `json:"actor_role"`
	PrevHash  []byte    `json:"prev_hash"`
	TxHash    []byte    `json:"tx_hash"`
	Sig       []byte    `json:"sig"`
}

// Checkpoint is a signed record of the ledger's LastSeq. Digest is the
// SHA-256 of the canonical {last_seq, count} pair; it does not hash the
// entries' contents.
type Checkpoint struct {
	LastSeq   uint64    `json:"last_seq"`
	Digest    []byte    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
	Sig       []byte    `json:"sig"`
}
