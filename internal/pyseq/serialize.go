package pyseq

import (
	"sort"
	"strconv"
	"strings"
)

// Serialize renders a mapping sequence back into python-literal text with
// deterministic (sorted) key order. Re-parsing the result yields an equal
// sequence.
func Serialize(seq []Mapping) string {
	var b strings.Builder

	b.WriteByte('[')

	for i, m := range seq {
		if i > 0 {
			b.WriteString(", ")
		}

		writeMapping(&b, m)
	}

	b.WriteByte(']')

	return b.String()
}

func writeMapping(b *strings.Builder, m Mapping) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	b.WriteByte('{')

	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}

		writeString(b, k)
		b.WriteString(": ")
		writeValue(b, m[k])
	}

	b.WriteByte('}')
}

func writeValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if val {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		// An integral float must keep a decimal point so re-parsing yields a
		// float again, python-repr style.
		text := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}

		b.WriteString(text)
	case string:
		writeString(b, val)
	}
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('\'')

	for _, r := range s {
		switch r {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('\'')
}
