package export

import (
	"bytes"
	"strings"
)

// CSV writes a header row and one line per row. Only fields containing a
// comma, quote, CR or LF are quoted, with embedded quotes doubled.
func CSV(cols []Column, rows []Row) []byte {
	var b bytes.Buffer
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvField(c.Header))
	}
	b.WriteByte('\n')
	for _, r := range rows {
		for i, c := range cols {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvField(Stringify(r[c.Key])))
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
