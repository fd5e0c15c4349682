package repository

import (
	"database/sql"
	"encoding/json"
)

// JSON column helpers. MySQL hands JSON columns back as []byte via
// sql.RawBytes; writes go through plain marshalling. Empty collections
// are stored as "[]" rather than NULL so readers never deal with a
// missing list.

func marshalList(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

// marshalOrNil serializes an optional document, mapping nil to a SQL
// NULL.
func marshalOrNil(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// nullStr converts an optional text column value for insertion.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// strOf reads back an optional text column.
func strOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
