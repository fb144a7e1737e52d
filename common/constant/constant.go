// Package constant centralizes the machine-readable error codes this
// system's components attach to ValidationError/StateConflictError, the
// same way the teacher's common/constant package centralizes its own
// catalog of business error identifiers instead of scattering literal
// strings across every handler.
package constant

const (
	// CodeUnknownTable flags a push/gate row naming a table the Sync
	// Table Registry has no TableDef for.
	CodeUnknownTable = "unknown_table"

	// CodeMalformed flags a row that is not valid JSON or otherwise
	// cannot be parsed into the shape a TableDef expects.
	CodeMalformed = "malformed"

	// CodeSchema flags a row that parsed but failed a TableDef's field
	// validation (missing required attribute, wrong type, and so on).
	CodeSchema = "schema"

	// CodeMalformedProposal flags a ChangeRequest whose stored
	// after_json no longer parses - a storage-layer invariant violation,
	// not a client mistake.
	CodeMalformedProposal = "malformed_proposal"

	// ReasonNotPending flags a decide attempt (Apply/Reject) against a
	// ChangeRequest that has already been decided.
	ReasonNotPending = "not_pending"
)
