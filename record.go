package marc

// Record is one bibliographic record: a leader string plus an ordered field
// sequence. Field order is preserved exactly as decoded and tags may repeat;
// there is no uniqueness rule on tags. Records are immutable once built.
type Record struct {
	leader string
	fields []Field
}

// NewRecord builds a record over the given fields. The slice is owned by the
// record afterwards.
func NewRecord(leader string, fields []Field) *Record {
	return &Record{leader: leader, fields: fields}
}

// Leader returns the leader string. It is opaque to this package beyond
// storage.
func (r *Record) Leader() string { return r.leader }

// Fields returns the record's fields in original order. With tags given, it
// returns the order-preserving subsequence whose tag is one of tags. Callers
// must not mutate the returned slice.
func (r *Record) Fields(tags ...string) []Field {
	if len(tags) == 0 {
		return r.fields
	}
	var out []Field
	for _, f := range r.fields {
		for _, t := range tags {
			if f.Tag() == t {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Find returns the first field with the given tag. The second result is
// false when no field matches. Repeats of the tag beyond the first are
// ignored; use Fields(tag) to see all of them.
func (r *Record) Find(tag string) (Field, bool) {
	for _, f := range r.fields {
		if f.Tag() == tag {
			return f, true
		}
	}
	return nil, false
}

// Values returns Value() of every field with the given tag, in original
// order, using the default joiner.
func (r *Record) Values(tag string) []string {
	var out []string
	for _, f := range r.fields {
		if f.Tag() == tag {
			out = append(out, f.Value())
		}
	}
	return out
}

// FirstValue returns the first of Values(tag), or the empty string when no
// field matches.
func (r *Record) FirstValue(tag string) string {
	if f, ok := r.Find(tag); ok {
		return f.Value()
	}
	return ""
}
