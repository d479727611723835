package types

// Record is a single row extracted from an artifact, keyed by column name
type Record map[string]any

// String returns the value of the given field as a string, or "" if it is not set or not a string
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}
