package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// member is one key/value pair of a JSON object, in document order.
//
// encoding/json's map decoding discards key order, but mapping traversal
// order determines column order, so objects are walked with a token
// decoder instead.
type member struct {
	key string
	raw json.RawMessage
}

// objectMembers decodes a JSON object into its members, preserving the
// document's key order. Returns an error if raw is not a JSON object.
func objectMembers(raw []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		members = append(members, member{key: key, raw: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode object close: %w", err)
	}
	return members, nil
}

// objectMember returns the named member of a JSON object, or false if the
// object has no such key.
func objectMember(raw []byte, name string) (json.RawMessage, bool, error) {
	members, err := objectMembers(raw)
	if err != nil {
		return nil, false, err
	}
	for _, m := range members {
		if m.key == name {
			return m.raw, true, nil
		}
	}
	return nil, false, nil
}
