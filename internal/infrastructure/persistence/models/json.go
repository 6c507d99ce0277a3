package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores V in a JSONB column. A value that encodes to null is stored as SQL NULL
// and a NULL column scans into the zero value of T.
type JSON[T any] struct {
	V T
}

// NewJSON wraps v
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{V: v}
}

// Value implements driver.Valuer
func (j JSON[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (j *JSON[T]) Scan(value any) error {
	var zero T
	j.V = zero

	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan JSON column: unsupported type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &j.V)
}

// GormDataType makes AutoMigrate and the dialects treat the column as JSON
func (JSON[T]) GormDataType() string {
	return "jsonb"
}
