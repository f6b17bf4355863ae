package snapshot

import (
	"bytes"
	"encoding/json"
)

// Cell is one key/value pair of a Row.
type Cell struct {
	Key   string
	Value any
}

// Row is an ordered record. It marshals as a JSON object whose keys keep
// the row order, so exported headers come out in first-seen order.
type Row []Cell

// R builds a Row from alternating keys and values. A trailing key without
// a value is stored as nil.
func R(kv ...any) Row {
	row := make(Row, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		row = append(row, Cell{Key: key, Value: v})
	}
	return row
}

// Get returns the value stored under key.
func (r Row) Get(key string) (any, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Headers returns the union of keys across rows in first-seen order.
func Headers(rows []Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		for _, c := range r {
			if _, ok := seen[c.Key]; ok {
				continue
			}
			seen[c.Key] = struct{}{}
			out = append(out, c.Key)
		}
	}
	return out
}
