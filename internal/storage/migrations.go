package storage

import (
	"encoding/json"
	"fmt"
)

// migration rewrites a raw state document from version n to n+1. The
// chain is linear; migrations[n] must exist for every n below
// SchemaVersion.
type migration func(map[string]json.RawMessage) (map[string]json.RawMessage, error)

var migrations = map[int]migration{
	0: migrateV0,
}

// migrateV0 handles pre-versioned files. The original layout stored
// the provider and model lists under fixed browser-storage style keys
// with no version field; the lists themselves carry forward unchanged,
// and project paths move under their current names.
func migrateV0(raw map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(raw)+1)
	for k, v := range raw {
		out[k] = v
	}

	// Legacy key names from the unversioned format.
	renames := map[string]string{
		"aiProviders":  "providers",
		"aiModels":     "models",
		"project_path": "projectPath",
	}
	for old, current := range renames {
		if v, ok := out[old]; ok {
			if _, taken := out[current]; !taken {
				out[current] = v
			}
			delete(out, old)
		}
	}

	version, err := json.Marshal(1)
	if err != nil {
		return nil, fmt.Errorf("marshal version: %w", err)
	}
	out["version"] = version
	return out, nil
}
