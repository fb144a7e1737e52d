package store

// noiseAllowList names, per table, the fields whose change actually
// matters to a human reviewer. Anything outside this set (chiefly
// updated_at/sync bookkeeping) is considered churn. Spec.md §9 leaves
// the default for tables with no entry as "show everything" - a missing
// table key is never treated as "hide everything".
var noiseAllowList = map[string][]string{
	"entity_types": {"code", "name", "deleted_at"},
	"entities":     {"type_id", "deleted_at"},
}

// SuppressNoise reports whether a change-request's before/after pair is
// pure churn for the moderation UI's "pending" view (spec.md §4.D). It
// never touches the ledger or change_log - it is a display filter only.
func (s *Store) SuppressNoise(table string, before, after map[string]any) bool {
	allow, ok := noiseAllowList[table]
	if !ok {
		return false
	}

	for _, field := range allow {
		if !equalJSONValue(before[field], after[field]) {
			return false
		}
	}

	return true
}

func equalJSONValue(a, b any) bool {
	if a == nil && b == nil {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	return a == b
}
