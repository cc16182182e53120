// Package document maps free-form JSON objects onto structs that type only
// some of their fields. Members a struct does not type travel in a side map
// and are written back at the top level of the object.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

// Decode unmarshals data into typed and returns the members of the object not
// named in known. It returns a nil map when there are none.
func Decode(data []byte, typed interface{}, known ...string) (map[string]interface{}, error) {
	if err := json.Unmarshal(data, typed); err != nil {
		return nil, err
	}
	return Extra(data, known...)
}

// Extra returns the members of the JSON object in data not named in known.
func Extra(data []byte, known ...string) (map[string]interface{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("document: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if doc.Type == gjson.Null {
		return nil, nil
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("document: want a JSON object, got %s", doc.Type)
	}

	var extra map[string]interface{}
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if slices.Contains(known, name) {
			return true
		}
		if extra == nil {
			extra = map[string]interface{}{}
		}
		extra[name] = value.Value()
		return true
	})
	return extra, nil
}

// Encode marshals typed, which must encode as a JSON object, and appends the
// members of extra to it. Members named in known are skipped so they cannot
// shadow a typed field.
func Encode(typed interface{}, extra map[string]interface{}, known ...string) ([]byte, error) {
	b, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	rest := make(map[string]interface{}, len(extra))
	for name, v := range extra {
		if !slices.Contains(known, name) {
			rest[name] = v
		}
	}
	if len(rest) == 0 {
		return b, nil
	}
	tail, err := json.Marshal(rest)
	if err != nil {
		return nil, err
	}
	if len(b) < 2 || b[0] != '{' {
		return nil, fmt.Errorf("document: %T does not encode as a JSON object", typed)
	}
	if string(b) == "{}" {
		return tail, nil
	}

	out := make([]byte, 0, len(b)+len(tail))
	out = append(out, b[:len(b)-1]...)
	out = append(out, ',')
	out = append(out, tail[1:]...)
	return out, nil
}
