// Package export turns already-selected row sets into downloadable files.
// Nothing here validates row contents; values are only stringified.
package export

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

type Column struct {
	Key    string
	Header string
	Width  float64 // spreadsheet width hint in characters; 0 keeps the default
}

type Row map[string]any

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename renders {resource}_{scope}_{YYYY-MM-DD}.{ext}.
func Filename(resource, scope string, at time.Time, f Format) string {
	return fmt.Sprintf("%s_%s_%s.%s", resource, scope, at.Format("2006-01-02"), f)
}

// Stringify maps nil (and nil pointers) to "" and everything else to its display form.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
