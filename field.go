package marc

import "strings"

// FieldType discriminates the two field variants of the format.
type FieldType int

const (
	ControlFieldType FieldType = iota
	DataFieldType
)

func (t FieldType) String() string {
	switch t {
	case ControlFieldType:
		return "control"
	case DataFieldType:
		return "data"
	default:
		return "unknown"
	}
}

// DefaultJoiner separates subfield values in Field.Value when no joiner is
// given.
const DefaultJoiner = " "

// Field is the capability set shared by the two field variants. The format
// defines exactly two: a control field (tag + scalar value) and a data field
// (tag + indicators + subfields). No third variant exists, so callers may
// type-switch on *ControlField / *DataField.
type Field interface {
	// Tag returns the field tag ("001", "245", ...). Three characters by
	// convention, not enforced.
	Tag() string
	// Type reports the variant.
	Type() FieldType
	// Value renders the field as a single string. Control fields return
	// their scalar verbatim and ignore the joiner; data fields join every
	// subfield value, in document order, with the joiner (default a single
	// space).
	Value(joiner ...string) string
}

// ControlField is a field with only a tag and a scalar value.
type ControlField struct {
	tag   string
	value string
}

// NewControlField builds a control field.
func NewControlField(tag, value string) *ControlField {
	return &ControlField{tag: tag, value: value}
}

func (f *ControlField) Tag() string     { return f.tag }
func (f *ControlField) Type() FieldType { return ControlFieldType }

// Value returns the scalar value unchanged. The joiner argument is accepted
// for signature uniformity with data fields and ignored.
func (f *ControlField) Value(joiner ...string) string { return f.value }

// DataField is a field with two indicator characters and an ordered subfield
// list.
type DataField struct {
	tag  string
	ind1 string
	ind2 string
	subs SubFields
}

// NewDataField builds a data field. Indicators are stored verbatim; a blank
// indicator is the single space.
func NewDataField(tag, ind1, ind2 string, subs SubFields) *DataField {
	return &DataField{tag: tag, ind1: ind1, ind2: ind2, subs: subs}
}

func (f *DataField) Tag() string     { return f.tag }
func (f *DataField) Type() FieldType { return DataFieldType }

// Ind1 returns the first indicator.
func (f *DataField) Ind1() string { return f.ind1 }

// Ind2 returns the second indicator.
func (f *DataField) Ind2() string { return f.ind2 }

// SubFields returns the ordered subfield list. Callers must not mutate it.
func (f *DataField) SubFields() SubFields { return f.subs }

// Value joins every subfield value in document order. With no subfields it
// returns the empty string.
func (f *DataField) Value(joiner ...string) string {
	j := DefaultJoiner
	if len(joiner) > 0 {
		j = joiner[0]
	}
	return strings.Join(f.subs.AllValues(), j)
}
