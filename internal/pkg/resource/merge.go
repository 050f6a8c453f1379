package resource

import (
	"bytes"
	"encoding/json"
)

// Merge applies a partial JSON object onto a copy of current. Keys in
// readOnly and keys the entity does not render are ignored, so unknown
// input never reaches the row and id stays stable.
func Merge[T any](current *T, patch []byte, readOnly map[string]struct{}) (*T, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, Invalidf("malformed JSON: %v", err)
	}
	if fields == nil {
		return nil, Invalidf("patch must be a JSON object")
	}

	rendered, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(rendered, &known); err != nil {
		return nil, err
	}

	allowed := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if _, ro := readOnly[k]; ro {
			continue
		}
		if _, ok := known[k]; !ok {
			// write-only fields (passwords) are omitted when empty but still patchable
			if !writeOnly(current, k) {
				continue
			}
		}
		allowed[k] = v
	}

	next := *current
	if len(allowed) == 0 {
		return &next, nil
	}
	b, err := json.Marshal(allowed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &next); err != nil {
		return nil, Invalidf("%v", err)
	}
	return &next, nil
}

type writeOnlyFields interface {
	WriteOnlyFields() []string
}

func writeOnly(v any, key string) bool {
	w, ok := v.(writeOnlyFields)
	if !ok {
		return false
	}
	for _, f := range w.WriteOnlyFields() {
		if f == key {
			return true
		}
	}
	return false
}
