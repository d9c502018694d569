package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// jsonColumn marshals v for a JSONB column, NULL when empty.
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

// scanJSON unmarshals a nullable JSON column into dst, leaving dst untouched on NULL.
func scanJSON(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), dst); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
