package normalizer

import (
	"moviedata/internal/models"
	"moviedata/internal/pyseq"
	"moviedata/pkg/utils"
)

// parseSeq parses an embedded-structure column. Malformed input contributes
// zero mappings and is counted as a data-quality event; it never rejects the
// owning record.
func (n *Normalizer) parseSeq(rec models.RawRecord, column string, stats *Stats) []pyseq.Mapping {
	raw := rec.Get(column)

	seq, err := pyseq.Parse(raw)
	if err != nil {
		stats.MalformedFields++

		n.log.Warn("malformed embedded structure",
			"source", rec.Source, "line", rec.Line, "column", column,
			"value", utils.TruncateString(utils.NormalizeWhitespace(raw), 80))

		return nil
	}

	return seq
}

// mapID extracts the identifier of one attribute-mapping. Mappings without
// a positive integer id denote nothing joinable and are skipped.
func mapID(m pyseq.Mapping) (int64, bool) {
	v, ok := mapInt(m, "id")
	if !ok || v <= 0 {
		return 0, false
	}

	return v, true
}

// mapInt reads an integer mapping value, tolerating integral floats.
func mapInt(m pyseq.Mapping, key string) (int64, bool) {
	switch v := m[key].(type) {
	case int64:
		return v, true
	case float64:
		n := int64(v)
		if float64(n) == v {
			return n, true
		}

		return 0, false
	default:
		return 0, false
	}
}

func mapIntPtr(m pyseq.Mapping, key string) *int64 {
	v, ok := mapInt(m, key)
	if !ok {
		return nil
	}

	return &v
}

func mapStr(m pyseq.Mapping, key string) string {
	s, _ := m[key].(string)

	return s
}
