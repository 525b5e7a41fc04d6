package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SchemaHash fingerprints the key set and value kinds of data together with
// version. It returns the first 16 hex characters of a SHA-256 digest over
//
//	{"fields": {"<key>": "<kind>", ...}, "version": <version>}
//
// with keys sorted, ", " and ": " separators and non-ASCII characters
// escaped, so files written by earlier releases keep the same hash.
func SchemaHash(version int, data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`{"fields": {`)
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		writeASCIIString(&b, k)
		b.WriteString(": ")
		writeASCIIString(&b, valueKind(data[k]))
	}
	fmt.Fprintf(&b, `}, "version": %d}`, version)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// writeASCIIString writes s as a JSON string literal using only ASCII.
func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || (r >= 0x7f && r < 0x10000):
				fmt.Fprintf(b, `\u%04x`, r)
			case r >= 0x10000:
				r -= 0x10000
				fmt.Fprintf(b, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			default:
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// valueKind names the kind of v. Integral numbers are "int" whether they are
// Go integers or decoded float64 values.
func valueKind(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case string:
		return "str"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32:
		return floatKind(float64(t))
	case float64:
		return floatKind(t)
	case json.Number:
		if _, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return "int"
		}
		return "float"
	case map[string]interface{}:
		return "dict"
	case []interface{}:
		return "list"
	default:
		return jsonKind(v)
	}
}

func floatKind(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return "int"
	}
	return "float"
}

// jsonKind classifies values of other Go types by their JSON encoding.
func jsonKind(v interface{}) string {
	content, err := json.Marshal(v)
	if err != nil || len(content) == 0 {
		return "NoneType"
	}
	switch content[0] {
	case '{':
		return "dict"
	case '[':
		return "list"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	case 'n':
		return "NoneType"
	default:
		var f float64
		if err := json.Unmarshal(content, &f); err == nil {
			return floatKind(f)
		}
		return "float"
	}
}
