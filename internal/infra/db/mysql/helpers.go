package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// jsonColumn marshals v for storage in a JSON/TEXT column; nil becomes SQL NULL.
func jsonColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

// scanJSON unmarshals a nullable JSON/TEXT column into dst. NULL leaves dst untouched.
func scanJSON(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), dst); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}

// stringOrDash keeps non-nullable string columns populated.
func stringOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
