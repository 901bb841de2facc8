package store

import (
	"encoding/json"
	"fmt"

	"github.com/chulbong-kr/wordscan/pkg/types"
)

// encodeProvenance serializes prov for a provenance row.
func encodeProvenance(prov types.Provenance) (kind, path, data string, err error) {
	switch prov.(type) {
	case types.FileProvenance, types.GitProvenance, types.ArchiveProvenance,
		types.MessageProvenance, types.ExtendedProvenance:
	default:
		return "", "", "", fmt.Errorf("unknown provenance type: %T", prov)
	}
	b, err := json.Marshal(prov)
	if err != nil {
		return "", "", "", fmt.Errorf("marshaling provenance: %w", err)
	}
	return prov.Kind(), prov.Path(), string(b), nil
}

// decodeProvenance rebuilds a provenance value from its row.
func decodeProvenance(kind, data string) (types.Provenance, error) {
	var (
		prov types.Provenance
		err  error
	)
	switch kind {
	case "file":
		var p types.FileProvenance
		err = json.Unmarshal([]byte(data), &p)
		prov = p
	case "git":
		var p types.GitProvenance
		err = json.Unmarshal([]byte(data), &p)
		prov = p
	case "archive":
		var p types.ArchiveProvenance
		err = json.Unmarshal([]byte(data), &p)
		prov = p
	case "message":
		var p types.MessageProvenance
		err = json.Unmarshal([]byte(data), &p)
		prov = p
	case "extended":
		var p types.ExtendedProvenance
		err = json.Unmarshal([]byte(data), &p)
		prov = p
	default:
		return nil, fmt.Errorf("unknown provenance type %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshaling %s provenance: %w", kind, err)
	}
	return prov, nil
}
