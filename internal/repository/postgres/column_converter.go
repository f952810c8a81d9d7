package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// timestampLayouts are the text forms a timestamptz value may arrive in.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
}

// Row is one fetched row addressed by column label.
type Row map[string]any

// scanRow reads the current row of rows into a Row keyed by column label.
func scanRow(rows *sql.Rows) (Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	row := make(Row, len(cols))
	for i, c := range cols {
		row[c] = values[i]
	}
	return row, nil
}

// ColumnConverter coerces raw column values into entity field types and back.
// A missing column or NULL converts to the zero value; only values of an
// incompatible type are errors.
type ColumnConverter struct{}

// Int64 returns the column as an identifier, nil when absent.
func (ColumnConverter) Int64(row Row, column string) (*int64, error) {
	switch v := row[column].(type) {
	case nil:
		return nil, nil
	case int64:
		return &v, nil
	case int32:
		n := int64(v)
		return &n, nil
	case int:
		n := int64(v)
		return &n, nil
	case []byte:
		return parseInt64(column, string(v))
	case string:
		return parseInt64(column, v)
	default:
		return nil, fmt.Errorf("column %s: cannot convert %T to int64", column, v)
	}
}

func parseInt64(column, s string) (*int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", column, err)
	}
	return &n, nil
}

// String returns the column as text, "" when absent.
func (ColumnConverter) String(row Row, column string) (string, error) {
	switch v := row[column].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("column %s: cannot convert %T to string", column, v)
	}
}

// Time returns the column as a timezone-aware instant, the zero time when absent.
func (ColumnConverter) Time(row Row, column string) (time.Time, error) {
	switch v := row[column].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(column, string(v))
	case string:
		return parseTime(column, v)
	default:
		return time.Time{}, fmt.Errorf("column %s: cannot convert %T to time.Time", column, v)
	}
}

func parseTime(column, s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: %w", column, err)
}

// ToColumn converts an entity field into a bind value. Empty strings, zero
// times and nil identifiers become SQL NULL so storage constraints reject
// absent required fields.
func (ColumnConverter) ToColumn(v any) any {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
		return x
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}
