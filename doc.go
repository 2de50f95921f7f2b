package marc

// Package marc models bibliographic records in the MARC family of formats and
// decodes the line-delimited "MARC-in-JSON" (MIJ) serialization into that
// model.
//
// It provides:
//
// - An immutable Record/Field/SubField model preserving document order, including repeated tags and repeated subfield codes
// - An accessor layer (Find/Fields/Values/FirstValue plus the SubFields queries) with first-match and filter semantics
// - A MIJ decoder with a stable error model via Issues (JSON Pointer, code, message), attributing parse and schema violations per line
// - A lazy Stream over line-delimited input, with optional order-preserving parallel decoding
//
// Design policy:
// - Keep only public APIs in the root package; put token plumbing under internal/engine and JSON backends under source/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	rec, err := marc.DecodeString(ctx, line)
//	title := rec.FirstValue("245")
//
//	s := marc.NewStream(r)
//	defer s.Close()
//	for res, ok := s.Next(); ok; res, ok = s.Next() {
//		if res.Err != nil {
//			continue // malformed line; the stream keeps going
//		}
//		use(res.Record)
//	}
