package postgrest

import (
	"encoding/json"
	"strings"

	"github.com/zoobzio/restql"
)

// jsonObject builds one JSON object with keys in column order. Request bodies
// are compared as strings in tests, so a map is never serialized directly.
func jsonObject(columns []string, values []restql.Atom) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteByte(':')
		val, _ := json.Marshal(values[i].JSON())
		b.Write(val)
	}
	b.WriteByte('}')
	return b.String()
}
