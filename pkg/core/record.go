package core

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one detail row: an open mapping from column name to a scalar
// (string, float64, bool or nil). Key order is the order the backend sent,
// which is what column discovery relies on.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRecord builds a record from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewRecord(kv ...any) Record {
	r := Record{fields: orderedmap.New[string, any]()}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		r.fields.Set(key, kv[i+1])
	}
	return r
}

// Set stores value under key, keeping the original position of an existing key.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, value)
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Field is a single key/value pair of a record.
type Field struct {
	Key   string
	Value any
}

// Fields returns the record's pairs in insertion order.
func (r Record) Fields() []Field {
	if r.fields == nil {
		return nil
	}
	out := make([]Field, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Field{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// MarshalJSON encodes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return err
	}
	r.fields = fields
	return nil
}

var (
	_ json.Marshaler   = Record{}
	_ json.Unmarshaler = (*Record)(nil)
)
