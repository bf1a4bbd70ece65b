package codec

// Record is the structured value a Constructed schema parses into, and the
// shape a Builder expects for one. Keys are the child field names declared
// on the schema. A required field is always present; an optional field is
// present iff it matched on the wire (or, for a defaulted primitive, is
// reconstructed with its default); a Repeated field is always present, as a
// possibly-empty []any.
type Record map[string]any

// Choice is the structured value a Choice schema parses into, and the shape
// a Builder expects for one: exactly one named alternative and its value.
type Choice struct {
	Variant string
	Value   any
}
