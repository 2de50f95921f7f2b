package marc

// SubField is one (code, value) pair inside a data field. Codes are a single
// character by convention and may repeat within a field (for example several
// "a" terms on a 650).
type SubField struct {
	Code  string
	Value string
}

// NewSubField builds a SubField pair.
func NewSubField(code, value string) SubField {
	return SubField{Code: code, Value: value}
}

// MatchesOneOf reports whether the subfield code is one of the given codes.
func (sf SubField) MatchesOneOf(codes ...string) bool {
	for _, c := range codes {
		if sf.Code == c {
			return true
		}
	}
	return false
}

// SubFields is an ordered association list of subfield pairs. It is NOT a
// map: insertion order is document order from the source and duplicate codes
// are preserved, never deduplicated.
type SubFields []SubField

// Filter returns the subsequence of pairs whose code is one of codes,
// preserving original order.
func (s SubFields) Filter(codes ...string) SubFields {
	var out SubFields
	for _, sf := range s {
		if sf.MatchesOneOf(codes...) {
			out = append(out, sf)
		}
	}
	return out
}

// AllValues returns every value in document order, regardless of code.
func (s SubFields) AllValues() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, sf := range s {
		out = append(out, sf.Value)
	}
	return out
}

// ValuesFor returns the values of pairs whose code is one of codes, in
// document order.
func (s SubFields) ValuesFor(codes ...string) []string {
	return s.Filter(codes...).AllValues()
}

// FirstValueFor returns the value of the first pair with the given code, or
// the empty string when none matches. Repeated codes beyond the first are
// ignored; use ValuesFor to see all of them.
func (s SubFields) FirstValueFor(code string) string {
	return s.FirstValueOr(code, "")
}

// FirstValueOr is FirstValueFor with an explicit fallback for the no-match
// case.
func (s SubFields) FirstValueOr(code, fallback string) string {
	for _, sf := range s {
		if sf.Code == code {
			return sf.Value
		}
	}
	return fallback
}
