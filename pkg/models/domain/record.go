package domain

// Record is a single flat input row: field name -> raw string value.
// Records are owned by the caller and never mutated by the pipeline.
type Record map[string]string

// Field returns the value for name, or "" when the field is absent.
func (r Record) Field(name string) string {
	return r[name]
}
