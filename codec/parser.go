package codec

import (
	"fmt"

	"github.com/AokiApp/tlv-sub001/asn1"
	"github.com/AokiApp/tlv-sub001/schema"
	"github.com/AokiApp/tlv-sub001/tlv"
)

const defaultMaxDepth = 100

// Parser walks a [schema.Schema] against a byte buffer and produces a
// structured value. A Parser is immutable once constructed and safe for
// concurrent use across goroutines, each call to [Parser.Parse] uses its own
// depth counter.
type Parser struct {
	schema   *schema.Schema
	strict   bool
	maxDepth int
}

// ParserOption configures a [Parser] at construction time.
type ParserOption func(*Parser)

// WithStrict overrides the default strict mode (on). In strict mode, SET
// children must appear in canonical DER order and a top-level parse must
// consume the entire input buffer.
func WithStrict(strict bool) ParserOption {
	return func(p *Parser) { p.strict = strict }
}

// WithMaxDepth overrides the default depth guard (100).
func WithMaxDepth(depth int) ParserOption {
	return func(p *Parser) { p.maxDepth = depth }
}

// NewParser builds a Parser for s.
func NewParser(s *schema.Schema, opts ...ParserOption) *Parser {
	p := &Parser{schema: s, strict: true, maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// parseState carries the per-call depth counter. It is never shared between
// concurrent Parse invocations on the same Parser.
type parseState struct {
	maxDepth int
	depth    int
}

func (st *parseState) enter(field string) error {
	st.depth++
	if st.depth > st.maxDepth {
		return newError(KindDepthExceeded, field, fmt.Sprintf("depth exceeded max %d", st.maxDepth))
	}
	return nil
}

func (st *parseState) leave() { st.depth-- }

// Parse consumes buf according to the Parser's schema and returns the
// resulting structured value: a Go value for a Primitive schema, a [Record]
// for a Constructed schema, or a [Choice] for a Choice schema. A top-level
// Repeated schema is rejected -- it has no enclosing TLV to dispatch on.
func (p *Parser) Parse(buf []byte) (any, error) {
	if p.schema.Kind() == schema.KindRepeated {
		return nil, newError(KindInvalidTag, p.schema.Name(), "a Repeated schema cannot be the top-level schema")
	}

	st := &parseState{maxDepth: p.maxDepth}
	value, consumed, err := p.parseValue(p.schema, buf, p.schema.Name(), st)
	if err != nil {
		return nil, err
	}
	if p.strict && consumed != len(buf) {
		return nil, newError(KindTrailingBytes, p.schema.Name(),
			fmt.Sprintf("consumed %d of %d bytes", consumed, len(buf)))
	}
	return value, nil
}

// peekHeader decodes the TLV header at the start of buf without otherwise
// interpreting it. ok is false only when buf is empty; a malformed header on
// a non-empty buf is a hard parse error, not a non-match.
func peekHeader(buf []byte, field string) (h tlv.Header, ok bool, err error) {
	if len(buf) == 0 {
		return tlv.Header{}, false, nil
	}
	h, err = tlv.DecodeHeader(buf)
	if err != nil {
		return tlv.Header{}, false, translateTLVError(err, field)
	}
	return h, true, nil
}

func translateTLVError(err error, field string) error {
	switch err {
	case tlv.ErrIndefiniteLength:
		return wrapError(KindIndefiniteLength, field, "indefinite length is not supported", err)
	case tlv.ErrInvalidTag:
		return wrapError(KindInvalidTag, field, "invalid tag or length encoding", err)
	case tlv.ErrLengthOverflow:
		return wrapError(KindLengthOverflow, field, "length-of-length exceeds the implementation's integer width", err)
	default:
		return wrapError(KindTruncated, field, "truncated header or content", err)
	}
}

// parseValue dispatches on s.Kind and returns the parsed value along with
// the number of bytes of buf it consumed (always a single full TLV for
// Primitive/Constructed/Choice; see parseValue's Repeated caller for element
// iteration, which never calls parseValue with a Repeated schema directly).
func (p *Parser) parseValue(s *schema.Schema, buf []byte, field string, st *parseState) (any, int, error) {
	if err := st.enter(field); err != nil {
		return nil, 0, err
	}
	defer st.leave()

	switch s.Kind() {
	case schema.KindPrimitive:
		return p.parsePrimitive(s, buf, field)
	case schema.KindConstructed:
		return p.parseConstructed(s, buf, field, st)
	case schema.KindChoice:
		c, n, err := p.parseChoice(s, buf, field, st)
		return c, n, err
	default:
		return nil, 0, newError(KindInvalidTag, field, fmt.Sprintf("unexpected schema kind %s in value position", s.Kind()))
	}
}

func (p *Parser) parsePrimitive(s *schema.Schema, buf []byte, field string) (any, int, error) {
	h, ok, err := peekHeader(buf, field)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, newError(KindTruncated, field, "no bytes remaining for primitive")
	}
	want, _ := s.Tag()
	if !h.Tag.Equal(want) {
		return nil, 0, newError(KindTagMismatch, field,
			fmt.Sprintf("expected tag %s, got %s", want, h.Tag))
	}
	content := buf[h.HeaderByteCount:][:h.Length]
	value, err := s.Decode(content)
	if err != nil {
		return nil, 0, wrapError(KindDecodeFailed, field, "user decode function failed", err)
	}
	return value, h.HeaderByteCount + h.Length, nil
}

func (p *Parser) parseConstructed(s *schema.Schema, buf []byte, field string, st *parseState) (any, int, error) {
	h, ok, err := peekHeader(buf, field)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, newError(KindTruncated, field, "no bytes remaining for constructed value")
	}
	want, _ := s.Tag()
	if !h.Tag.Equal(want) {
		return nil, 0, newError(KindTagMismatch, field,
			fmt.Sprintf("expected tag %s, got %s", want, h.Tag))
	}
	total := h.HeaderByteCount + h.Length
	content := buf[h.HeaderByteCount:][:h.Length]

	if len(s.Children()) == 0 {
		return Record{}, total, nil
	}

	var record Record
	if s.IsSet() {
		record, err = p.parseSet(s, content, st)
	} else {
		record, err = p.parseSequence(s, content, st)
	}
	if err != nil {
		return nil, 0, err
	}
	return record, total, nil
}

func fieldMatchesTag(field *schema.Schema, tag asn1.Tag) bool {
	if field.Kind() == schema.KindChoice {
		for _, alt := range field.Alternatives() {
			if alt.Schema.MatchTag(tag) {
				return true
			}
		}
		return false
	}
	return field.MatchTag(tag)
}

// parseSequence implements the SEQUENCE matching algorithm of the data
// model: linear, order-preserving, one pass over the declared fields.
func (p *Parser) parseSequence(s *schema.Schema, content []byte, st *parseState) (Record, error) {
	record := Record{}
	offset := 0
	end := len(content)

	for _, field := range s.Children() {
		if field.Kind() == schema.KindRepeated {
			elems := []any{}
			for offset < end {
				h, ok, err := peekHeader(content[offset:], field.Name())
				if err != nil {
					return nil, err
				}
				if !ok || !field.MatchTag(h.Tag) {
					break
				}
				val, n, err := p.parseValue(field.Element(), content[offset:], field.Name(), st)
				if err != nil {
					return nil, err
				}
				elems = append(elems, val)
				offset += n
			}
			record[field.Name()] = elems
			continue
		}

		matched := false
		if offset < end {
			h, ok, err := peekHeader(content[offset:], field.Name())
			if err != nil {
				return nil, err
			}
			matched = ok && fieldMatchesTag(field, h.Tag)
		}

		switch {
		case matched:
			val, n, err := p.parseSequenceField(field, content[offset:], st)
			if err != nil {
				return nil, err
			}
			record[field.Name()] = val
			offset += n

		case field.Kind() == schema.KindPrimitive:
			if dv, ok := field.Default(); ok {
				record[field.Name()] = dv
				continue
			}
			if field.Optional() {
				continue
			}
			if offset >= end {
				return nil, newError(KindMissingRequired, field.Name(), "required field absent")
			}
			return nil, newError(KindSequenceMismatch, field.Name(), "next child's tag does not match expected field")

		default:
			if field.Optional() {
				continue
			}
			if offset >= end {
				return nil, newError(KindMissingRequired, field.Name(), "required field absent")
			}
			if field.Kind() == schema.KindChoice {
				return nil, newError(KindNoChoiceMatch, field.Name(), "no alternative matches next child's tag")
			}
			return nil, newError(KindSequenceMismatch, field.Name(), "next child's tag does not match expected field")
		}
	}

	if offset != end {
		return nil, newError(KindUnexpectedExtraChild, s.Name(), "bytes remain after all fields consumed")
	}
	return record, nil
}

// parseSequenceField parses a single already-tag-matched non-repeated field.
// parseValue already special-cases Choice, so this is a thin wrapper kept
// for symmetry with the SET matcher, which calls it too.
func (p *Parser) parseSequenceField(field *schema.Schema, buf []byte, st *parseState) (any, int, error) {
	return p.parseValue(field, buf, field.Name(), st)
}

type setChild struct {
	header    tlv.Header
	raw       []byte
	consumed  bool
}

// parseSet implements the SET matching algorithm of the data model:
// order-independent, with an unconditional unknown-child check and a
// strict-only canonical-order check.
func (p *Parser) parseSet(s *schema.Schema, content []byte, st *parseState) (Record, error) {
	var children []setChild
	offset := 0
	for offset < len(content) {
		h, err := tlv.DecodeHeader(content[offset:])
		if err != nil {
			return nil, translateTLVError(err, s.Name())
		}
		total := h.HeaderByteCount + h.Length
		children = append(children, setChild{header: h, raw: content[offset : offset+total]})
		offset += total
	}

	for _, c := range children {
		matchedAny := false
		for _, field := range s.Children() {
			if fieldMatchesTag(field, c.header.Tag) {
				matchedAny = true
				break
			}
		}
		if !matchedAny {
			return nil, newError(KindUnknownChild, s.Name(),
				fmt.Sprintf("child tag %s matches no declared field", c.header.Tag))
		}
	}

	if p.strict {
		for i := 1; i < len(children); i++ {
			if tlv.CompareUnsignedLex(children[i-1].raw, children[i].raw) > 0 {
				return nil, newError(KindDerOrder, s.Name(), "SET children are not in canonical DER order")
			}
		}
	}

	record := Record{}
	for _, field := range s.Children() {
		if field.Kind() == schema.KindRepeated {
			elems := []any{}
			for i := range children {
				if children[i].consumed || !field.MatchTag(children[i].header.Tag) {
					continue
				}
				val, _, err := p.parseValue(field.Element(), children[i].raw, field.Name(), st)
				if err != nil {
					return nil, err
				}
				elems = append(elems, val)
				children[i].consumed = true
			}
			if !field.Optional() && len(elems) == 0 {
				return nil, newError(KindMissingRequired, field.Name(), "required repeated field matched no children")
			}
			record[field.Name()] = elems
			continue
		}

		idx := -1
		for i := range children {
			if !children[i].consumed && fieldMatchesTag(field, children[i].header.Tag) {
				idx = i
				break
			}
		}
		if idx < 0 {
			if dv, ok := field.Default(); ok {
				record[field.Name()] = dv
				continue
			}
			if field.Optional() {
				continue
			}
			return nil, newError(KindMissingRequired, field.Name(), "required field absent")
		}

		val, _, err := p.parseSequenceField(field, children[idx].raw, st)
		if err != nil {
			return nil, err
		}
		record[field.Name()] = val
		children[idx].consumed = true
	}

	for _, c := range children {
		if !c.consumed {
			return nil, newError(KindUnexpectedExtraChild, s.Name(), "unconsumed SET child after matching all fields")
		}
	}
	return record, nil
}

// parseChoice peeks the next child's tag, selects the first alternative
// whose sub-schema tag matches, and parses it, wrapping the result.
func (p *Parser) parseChoice(s *schema.Schema, buf []byte, field string, st *parseState) (Choice, int, error) {
	h, ok, err := peekHeader(buf, field)
	if err != nil {
		return Choice{}, 0, err
	}
	if !ok {
		return Choice{}, 0, newError(KindNoChoiceMatch, field, "no bytes remaining for choice")
	}
	for _, alt := range s.Alternatives() {
		if !alt.Schema.MatchTag(h.Tag) {
			continue
		}
		val, n, err := p.parseValue(alt.Schema, buf, alt.Name, st)
		if err != nil {
			return Choice{}, 0, err
		}
		return Choice{Variant: alt.Name, Value: val}, n, nil
	}
	return Choice{}, 0, newError(KindNoChoiceMatch, field,
		fmt.Sprintf("tag %s matches no alternative", h.Tag))
}
