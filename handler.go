package jsonsax

import "github.com/mcvoid/jsonsax/encoding"

// Result is returned by every Handler method to steer the parser
// (spec.md §4.4).
type Result int

const (
	// Continue proceeds with the parse.
	Continue Result = iota
	// Abort stops the parse; the error is set to AbortedByHandler at the
	// current token's location.
	Abort
	// TreatAsDuplicate is legal only as the return of ObjectMember: it
	// behaves as if duplicate detection had already seen this name.
	TreatAsDuplicate
)

// SpecialNumberKind names which non-finite literal a SpecialNumber event
// carries (allow_special_numbers).
type SpecialNumberKind int

const (
	NaN SpecialNumberKind = iota
	Infinity
	NegativeInfinity
)

func (k SpecialNumberKind) String() string {
	switch k {
	case NaN:
		return "NaN"
	case Infinity:
		return "Infinity"
	case NegativeInfinity:
		return "-Infinity"
	default:
		return "SpecialNumberKind(?)"
	}
}

// Handler is the capability object a client implements to receive parse
// events, replacing the source's callback-pointer-plus-cookie pattern
// (spec.md §9). Every method's return value is a Result; only ObjectMember
// may legally return TreatAsDuplicate.
type Handler interface {
	// EncodingDetected fires exactly once, before any other event, with
	// the encoding the parser settled on (explicit or auto-detected).
	EncodingDetected(kind encoding.Kind) Result

	Null() Result
	Boolean(value bool) Result
	String(value []byte, attrs StringAttrs) Result
	Number(text []byte, attrs NumberAttrs) Result
	SpecialNumber(kind SpecialNumberKind) Result

	StartObject() Result
	EndObject() Result
	ObjectMember(name []byte, attrs StringAttrs) Result

	StartArray() Result
	EndArray() Result
	// ArrayItem fires once before every array element's value event,
	// first true on the first element.
	ArrayItem(first bool) Result
}

// NopHandler implements Handler with Continue-returning no-ops. Embed it
// and override only the events a client cares about.
type NopHandler struct{}

func (NopHandler) EncodingDetected(encoding.Kind) Result { return Continue }
func (NopHandler) Null() Result                          { return Continue }
func (NopHandler) Boolean(bool) Result                   { return Continue }
func (NopHandler) String([]byte, StringAttrs) Result     { return Continue }
func (NopHandler) Number([]byte, NumberAttrs) Result      { return Continue }
func (NopHandler) SpecialNumber(SpecialNumberKind) Result { return Continue }
func (NopHandler) StartObject() Result                   { return Continue }
func (NopHandler) EndObject() Result                     { return Continue }
func (NopHandler) ObjectMember([]byte, StringAttrs) Result { return Continue }
func (NopHandler) StartArray() Result                    { return Continue }
func (NopHandler) EndArray() Result                      { return Continue }
func (NopHandler) ArrayItem(bool) Result                 { return Continue }

// OutputHandler receives the writer's emitted bytes (spec.md §4.5/§6).
type OutputHandler interface {
	OutputBytes(data []byte) Result
}
