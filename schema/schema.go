// Package schema describes the shape of a TLV-encoded value. A [Schema] is a
// tagged union over four kinds -- primitive, constructed, repeated, and
// choice -- built through the [Primitive], [Constructed], [Repeated] and
// [Choice] factory functions. Descriptors are immutable once built and may be
// shared freely across parsers and builders running on separate goroutines.
//
// The codec package walks a Schema against a byte buffer (parsing) or a
// [codec.Record]-shaped value (building); this package only describes what
// is expected, never how to read or write bytes.
package schema

import (
	"fmt"

	"github.com/AokiApp/tlv-sub001/asn1"
)

// Kind discriminates the four Schema shapes.
type Kind int

const (
	KindPrimitive Kind = iota
	KindConstructed
	KindRepeated
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindConstructed:
		return "constructed"
	case KindRepeated:
		return "repeated"
	case KindChoice:
		return "choice"
	default:
		return "invalid"
	}
}

// DecodeFunc turns the content octets of a primitive TLV into a Go value. It
// must not retain or mutate the slice it is given; the codec package may
// reuse or discard the backing array after DecodeFunc returns.
type DecodeFunc func(content []byte) (any, error)

// EncodeFunc turns a Go value into the content octets of a primitive TLV.
type EncodeFunc func(value any) ([]byte, error)

// identityDecode and identityEncode are the defaults a Primitive uses when
// the caller supplies a nil decode or encode function: the content octets
// pass through unchanged as a []byte.
func identityDecode(content []byte) (any, error) {
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func identityEncode(value any) ([]byte, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("schema: identity encoder requires []byte, got %T", value)
	}
	return b, nil
}

// Alternative is one named branch of a Choice.
type Alternative struct {
	Name   string
	Schema *Schema
}

// Schema is an immutable descriptor for one node of a TLV tree. Which fields
// are meaningful depends on Kind; see [Primitive], [Constructed], [Repeated]
// and [Choice].
type Schema struct {
	kind Kind
	name string

	// Tag identity, meaningful for Primitive, Constructed, and Repeated (the
	// element tag). Constructed bit is implied by kind, not stored here.
	tagClass  asn1.Class
	tagNumber uint64

	optional     bool
	hasDefault   bool
	defaultValue any

	decode DecodeFunc
	encode EncodeFunc

	isSet    bool
	children []*Schema

	element *Schema

	alternatives []Alternative
}

// Kind reports which of the four shapes s is.
func (s *Schema) Kind() Kind { return s.kind }

// Name reports the field name s was declared with.
func (s *Schema) Name() string { return s.name }

// Optional reports whether s may be absent from its enclosing container.
func (s *Schema) Optional() bool { return s.optional }

// Default reports the default value configured on a Primitive schema, if
// any. The second return value is false for every other kind, and for a
// Primitive with no default configured.
func (s *Schema) Default() (any, bool) {
	if s.kind != KindPrimitive {
		return nil, false
	}
	return s.defaultValue, s.hasDefault
}

// Tag reports the tag identity of s. For Repeated this is the element tag,
// not a container tag (Repeated fields have no tag of their own; the
// enclosing Constructed supplies the container tag). Choice schemas have no
// single tag and Tag's second return value is false for them.
func (s *Schema) Tag() (asn1.Tag, bool) {
	switch s.kind {
	case KindPrimitive:
		return asn1.Tag{Class: s.tagClass, Number: s.tagNumber, Constructed: false}, true
	case KindConstructed:
		return asn1.Tag{Class: s.tagClass, Number: s.tagNumber, Constructed: true}, true
	case KindRepeated:
		return s.element.Tag()
	default:
		return asn1.Tag{}, false
	}
}

// IsSet reports whether a Constructed schema matches children order-
// independently (SET semantics) rather than in declared order (SEQUENCE
// semantics). Meaningless for other kinds.
func (s *Schema) IsSet() bool { return s.isSet }

// Children returns the declared child schemas of a Constructed schema, in
// declaration order. The returned slice must not be mutated.
func (s *Schema) Children() []*Schema { return s.children }

// Element returns the element schema of a Repeated schema.
func (s *Schema) Element() *Schema { return s.element }

// Alternatives returns the named branches of a Choice schema, in declaration
// order. The returned slice must not be mutated.
func (s *Schema) Alternatives() []Alternative { return s.alternatives }

// Decode invokes the configured decode function, or the byte-identity
// default if none was supplied.
func (s *Schema) Decode(content []byte) (any, error) {
	if s.decode != nil {
		return s.decode(content)
	}
	return identityDecode(content)
}

// Encode invokes the configured encode function, or the byte-identity
// default if none was supplied.
func (s *Schema) Encode(value any) ([]byte, error) {
	if s.encode != nil {
		return s.encode(value)
	}
	return identityEncode(value)
}

// PrimitiveOptions configures [Primitive].
type PrimitiveOptions struct {
	TagClass     asn1.Class
	TagNumber    uint64
	Optional     bool
	DefaultValue any
	// HasDefault distinguishes "no default" from a valid zero-value
	// default (e.g. an integer default of 0, or an empty byte slice).
	HasDefault bool
}

// Primitive declares a leaf schema identified by (class, number). decode and
// encode may be nil, in which case the content octets pass through as a
// []byte unchanged.
//
// Primitive panics if opts.TagNumber exceeds [asn1.MaxTagNumber]; a
// primitive with no tag number is a malformed schema and callers should
// never be able to construct one (invariant 1 of the data model is enforced
// by requiring the tag as a constructor argument, not as an optional field).
func Primitive(name string, opts PrimitiveOptions, decode DecodeFunc, encode EncodeFunc) *Schema {
	if opts.TagNumber > asn1.MaxTagNumber {
		panic(fmt.Sprintf("schema: primitive %q: tag number %d exceeds max", name, opts.TagNumber))
	}
	return &Schema{
		kind:         KindPrimitive,
		name:         name,
		tagClass:     opts.TagClass,
		tagNumber:    opts.TagNumber,
		optional:     opts.Optional,
		hasDefault:   opts.HasDefault,
		defaultValue: opts.DefaultValue,
		decode:       decode,
		encode:       encode,
	}
}

// ConstructedOptions configures [Constructed].
type ConstructedOptions struct {
	TagClass  asn1.Class
	TagNumber uint64
	Optional  bool
	// IsSet overrides the SET/SEQUENCE inference from (TagClass, TagNumber).
	// Nil means "infer": Universal/17 is a SET, everything else a SEQUENCE.
	IsSet *bool
}

// Constructed declares a container schema over an ordered list of children.
// A zero-length children list declares an opaque placeholder: [Invariant 7]
// of the data model -- the codec package accepts and discards any inner
// content for it on parse, and emits no children for it on build.
//
// Constructed panics if two children share a name, matching invariant 2 of
// the data model.
func Constructed(name string, opts ConstructedOptions, children ...*Schema) *Schema {
	if opts.TagNumber > asn1.MaxTagNumber {
		panic(fmt.Sprintf("schema: constructed %q: tag number %d exceeds max", name, opts.TagNumber))
	}
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if seen[c.name] {
			panic(fmt.Sprintf("schema: constructed %q: duplicate child name %q", name, c.name))
		}
		seen[c.name] = true
	}

	isSet := opts.TagClass == asn1.ClassUniversal && opts.TagNumber == asn1.TagSet
	if opts.IsSet != nil {
		isSet = *opts.IsSet
	}

	return &Schema{
		kind:      KindConstructed,
		name:      name,
		tagClass:  opts.TagClass,
		tagNumber: opts.TagNumber,
		optional:  opts.Optional,
		isSet:     isSet,
		children:  children,
	}
}

// RepeatedOptions configures [Repeated].
type RepeatedOptions struct {
	Optional bool
}

// Repeated declares "SEQUENCE OF" / "SET OF" semantics: zero or more
// consecutive (in a SEQUENCE) or scattered (in a SET) children matching
// element's tag. Repeated itself carries no container tag; [Schema.Tag]
// delegates to element.
func Repeated(name string, opts RepeatedOptions, element *Schema) *Schema {
	return &Schema{
		kind:     KindRepeated,
		name:     name,
		optional: opts.Optional,
		element:  element,
	}
}

// ChoiceOptions configures [Choice].
type ChoiceOptions struct {
	Optional bool
}

// Choice declares an ASN.1 CHOICE: exactly one of alternatives is present on
// the wire, identified by its own tag. Choice panics if alternatives is
// empty, or if two alternatives share a tag (invariant 3 of the data model:
// dispatch must be unambiguous).
func Choice(name string, opts ChoiceOptions, alternatives ...Alternative) *Schema {
	if len(alternatives) == 0 {
		panic(fmt.Sprintf("schema: choice %q: must have at least one alternative", name))
	}
	for i, a := range alternatives {
		ti, ok := a.Schema.Tag()
		if !ok {
			panic(fmt.Sprintf("schema: choice %q: alternative %q has no tag identity", name, a.Name))
		}
		for _, b := range alternatives[i+1:] {
			tj, ok := b.Schema.Tag()
			if ok && ti.Equal(tj) {
				panic(fmt.Sprintf("schema: choice %q: alternatives %q and %q share tag %s", name, a.Name, b.Name, ti))
			}
		}
	}
	return &Schema{
		kind:         KindChoice,
		name:         name,
		optional:     opts.Optional,
		alternatives: alternatives,
	}
}

// MatchTag reports whether tag identifies s when s appears as a field: for
// Primitive and Constructed, equality against s's own tag; for Repeated,
// equality against the element's tag (matching a single occurrence, not the
// whole repetition); Choice never matches directly since it carries no tag
// of its own -- callers must check each alternative.
func (s *Schema) MatchTag(tag asn1.Tag) bool {
	switch s.kind {
	case KindChoice:
		return false
	default:
		t, ok := s.Tag()
		return ok && t.Equal(tag)
	}
}
