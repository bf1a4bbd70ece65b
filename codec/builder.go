package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"

	"github.com/AokiApp/tlv-sub001/schema"
	"github.com/AokiApp/tlv-sub001/tlv"
)

// Builder walks a [schema.Schema] against a structured value and emits DER
// bytes. A Builder is immutable once constructed and safe for concurrent use
// across goroutines.
type Builder struct {
	schema *schema.Schema
	strict bool
}

// BuilderOption configures a [Builder] at construction time.
type BuilderOption func(*Builder)

// WithBuilderStrict overrides the default strict mode (on). In strict mode,
// SET children are sorted into canonical DER order before being emitted.
func WithBuilderStrict(strict bool) BuilderOption {
	return func(b *Builder) { b.strict = strict }
}

// NewBuilder builds a Builder for s.
func NewBuilder(s *schema.Schema, opts ...BuilderOption) *Builder {
	b := &Builder{schema: s, strict: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build encodes value according to the Builder's schema. value must have the
// same shape [Parser.Parse] would have produced: a Go value for a Primitive
// schema, a [Record] for Constructed, a [Choice] for Choice. A top-level
// Repeated schema is rejected -- it has no enclosing TLV to wrap it in.
func (b *Builder) Build(value any) ([]byte, error) {
	if b.schema.Kind() == schema.KindRepeated {
		return nil, newError(KindInvalidTag, b.schema.Name(), "a Repeated schema cannot be the top-level schema")
	}
	var dst bytes.Buffer
	if err := b.buildValue(&dst, b.schema, value, b.schema.Name()); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

// buildValue dispatches on s.Kind and appends the full TLV encoding of value
// to dst.
func (b *Builder) buildValue(dst *bytes.Buffer, s *schema.Schema, value any, field string) error {
	switch s.Kind() {
	case schema.KindPrimitive:
		return b.buildPrimitive(dst, s, value, field)
	case schema.KindConstructed:
		return b.buildConstructed(dst, s, value, field)
	case schema.KindChoice:
		return b.buildChoice(dst, s, value, field)
	default:
		return newError(KindInvalidTag, field, fmt.Sprintf("unexpected schema kind %s in value position", s.Kind()))
	}
}

func (b *Builder) buildPrimitive(dst *bytes.Buffer, s *schema.Schema, value any, field string) error {
	content, err := s.Encode(value)
	if err != nil {
		return wrapError(KindEncodeFailed, field, "user encode function failed", err)
	}
	tag, _ := s.Tag()
	if err := tlv.EncodeHeader(dst, tag, len(content)); err != nil {
		return translateBuildTLVError(err, field)
	}
	dst.Write(content)
	return nil
}

func translateBuildTLVError(err error, field string) error {
	if err == tlv.ErrLengthOverflow {
		return wrapError(KindLengthOverflow, field, "content length too long to encode", err)
	}
	return wrapError(KindInvalidTag, field, "invalid tag", err)
}

func (b *Builder) buildConstructed(dst *bytes.Buffer, s *schema.Schema, value any, field string) error {
	tag, _ := s.Tag()

	if len(s.Children()) == 0 {
		return tlv.EncodeHeader(dst, tag, 0)
	}

	record, ok := value.(Record)
	if !ok {
		return newError(KindMissingRequiredBuild, field, fmt.Sprintf("expected Record, got %T", value))
	}

	var bodies [][]byte
	for _, child := range s.Children() {
		chunks, err := b.buildField(child, record)
		if err != nil {
			return err
		}
		bodies = append(bodies, chunks...)
	}

	if s.IsSet() && b.strict {
		sort.Slice(bodies, func(i, j int) bool {
			return tlv.CompareUnsignedLex(bodies[i], bodies[j]) < 0
		})
	}

	lens := make([]int, len(bodies))
	for i, c := range bodies {
		lens[i] = len(c)
	}
	total := tlv.CombinedLength(lens...)
	if total < 0 {
		return newError(KindLengthOverflow, field, "combined child length too large to encode")
	}
	if err := tlv.EncodeHeader(dst, tag, total); err != nil {
		return translateBuildTLVError(err, field)
	}
	for _, c := range bodies {
		dst.Write(c)
	}
	return nil
}

// buildField encodes one declared child field from record, returning the
// full TLV byte chunk(s) it contributed (more than one for a Repeated
// field), or none if the field was legitimately omitted.
func (b *Builder) buildField(child *schema.Schema, record Record) ([][]byte, error) {
	raw, present := record[child.Name()]

	if child.Kind() == schema.KindRepeated {
		if !present {
			if child.Optional() {
				return nil, nil
			}
			return nil, newError(KindMissingRequiredBuild, child.Name(), "required repeated field absent")
		}
		items, ok := toSlice(raw)
		if !ok {
			return nil, newError(KindNonArrayForRepeated, child.Name(), fmt.Sprintf("expected slice, got %T", raw))
		}
		var chunks [][]byte
		for _, item := range items {
			var buf bytes.Buffer
			if err := b.buildValue(&buf, child.Element(), item, child.Name()); err != nil {
				return nil, err
			}
			chunks = append(chunks, buf.Bytes())
		}
		return chunks, nil
	}

	if !present {
		if child.Optional() {
			return nil, nil
		}
		if _, ok := child.Default(); ok {
			return nil, nil
		}
		return nil, newError(KindMissingRequiredBuild, child.Name(), "required field absent")
	}

	if dv, ok := child.Default(); ok && valuesEqual(raw, dv) {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := b.buildValue(&buf, child, raw, child.Name()); err != nil {
		return nil, err
	}
	return [][]byte{buf.Bytes()}, nil
}

func (b *Builder) buildChoice(dst *bytes.Buffer, s *schema.Schema, value any, field string) error {
	c, ok := value.(Choice)
	if !ok {
		return newError(KindMissingRequiredBuild, field, fmt.Sprintf("expected Choice, got %T", value))
	}
	for _, alt := range s.Alternatives() {
		if alt.Name == c.Variant {
			return b.buildValue(dst, alt.Schema, c.Value, alt.Name)
		}
	}
	return newError(KindMissingRequiredBuild, field, fmt.Sprintf("no alternative named %q", c.Variant))
}

func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func valuesEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return reflect.DeepEqual(a, b)
}
