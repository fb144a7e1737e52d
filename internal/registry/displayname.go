package registry

import "encoding/json"

// ResolveDisplayName implements the per-EntityType label rule described in
// spec.md §9 ("per-entity label heuristics"): the EntityType carries its
// own DisplayNameAttr, and both server and client read it off the same
// AttributeDef code so the two never drift. attrValues maps attribute_def
// code to its decoded value_json.
func ResolveDisplayName(displayNameAttr string, attrValues map[string]string) (string, bool) {
	if displayNameAttr == "" {
		return "", false
	}

	raw, ok := attrValues[displayNameAttr]
	if !ok {
		return "", false
	}

	var decoded string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return "", false
	}

	return decoded, decoded != ""
}
