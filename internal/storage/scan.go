package storage

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"vistoria/pkg/records"
)

// ScanRows drains rows into records. Byte slices become strings so that the
// engine sees the same value types a CSV source would produce.
func ScanRows(rows *sql.Rows) ([]records.Record, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	var out []records.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, ToRecord(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// ToRecord pairs column names with scanned values.
func ToRecord(cols []string, vals []any) records.Record {
	r := make(records.Record, len(cols))
	for i, c := range cols {
		r[c] = plain(vals[i])
	}
	return r
}

func plain(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return fmt.Sprint(t)
		}
		if b, ok := dv.([]byte); ok {
			return string(b)
		}
		return dv
	default:
		return v
	}
}
