package marc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	eng "github.com/openbib/marc/internal/engine"
)

// maxLineDepth bounds container nesting per line. Well-formed MIJ nests six
// levels deep; anything past this is garbage input, not a record.
const maxLineDepth = 32

// Decode reads exactly one MIJ record from the source. Invalid JSON yields a
// parse_error issue; valid JSON violating the MIJ shape contract yields
// schema issues, all of them collected with JSON Pointer attribution. A
// failed decode never returns a partially built record.
func Decode(ctx context.Context, src Source) (*Record, error) {
	if src == nil {
		return nil, singleIssue(CodeUsage, "/", "nil source")
	}
	if err := ctx.Err(); err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeIO, Path: "/", Message: "context canceled", Offset: -1, Cause: err})
	}
	ts := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		RejectDuplicateKeys: true,
		MaxDepth:            maxLineDepth,
	})
	v, err := eng.DecodeAnyFromSource(ts)
	if err != nil {
		return nil, sourceErrToIssues(err, src)
	}
	// One record per line; anything after the top-level value is garbage.
	if _, err := ts.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, sourceErrToIssues(err, src)
		}
		return nil, AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: "trailing data after record", Offset: src.Location()})
	}
	return DecodeRecord(v)
}

// DecodeBytes decodes one MIJ record from a byte slice.
func DecodeBytes(ctx context.Context, b []byte) (*Record, error) {
	return Decode(ctx, JSONBytes(b))
}

// DecodeString decodes one MIJ record from a string.
func DecodeString(ctx context.Context, s string) (*Record, error) {
	return DecodeBytes(ctx, []byte(s))
}

// DecodeRecord translates one generic decoded-JSON value (maps/arrays/
// scalars) into a Record. The expected shape is a top-level object with a
// "leader" string and a "fields" array of single-key entry objects; see the
// package documentation for the full contract.
func DecodeRecord(v any) (*Record, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, singleIssue(CodeInvalidType, "/", fmt.Sprintf("expected object, got %s", jsonTypeName(v)))
	}

	var iss Issues

	leader := ""
	if lv, ok := m["leader"]; !ok {
		iss = AppendIssues(iss, Issue{Code: CodeRequired, Path: "/leader", Message: "leader is required", Offset: -1})
	} else if s, ok := lv.(string); ok {
		leader = s
	} else {
		iss = AppendIssues(iss, Issue{Code: CodeInvalidType, Path: "/leader", Message: fmt.Sprintf("expected string, got %s", jsonTypeName(lv)), Offset: -1})
	}

	var fields []Field
	if fv, ok := m["fields"]; !ok {
		iss = AppendIssues(iss, Issue{Code: CodeRequired, Path: "/fields", Message: "fields is required", Offset: -1})
	} else if arr, ok := fv.([]any); ok {
		for i, entry := range arr {
			f, fiss := decodeFieldEntry("/fields/"+strconv.Itoa(i), entry)
			if len(fiss) > 0 {
				iss = AppendIssues(iss, fiss...)
				continue
			}
			fields = append(fields, f)
		}
	} else {
		iss = AppendIssues(iss, Issue{Code: CodeInvalidType, Path: "/fields", Message: fmt.Sprintf("expected array, got %s", jsonTypeName(fv)), Offset: -1})
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return NewRecord(leader, fields), nil
}

// decodeFieldEntry turns one single-key entry object into a field. A scalar
// value makes a control field, an object makes a data field; the variant is
// fixed here and never reinterpreted.
func decodeFieldEntry(path string, v any) (Field, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, singleIssue(CodeInvalidType, path, fmt.Sprintf("expected object, got %s", jsonTypeName(v)))
	}
	if len(m) != 1 {
		return nil, singleIssue(CodeMultiKeyEntry, path, fmt.Sprintf("field entry must have exactly one key, got %d", len(m)))
	}
	for tag, fv := range m {
		switch tv := fv.(type) {
		case string:
			return NewControlField(tag, tv), nil
		case json.Number:
			// Lenient on numeric control values; the literal text is kept.
			return NewControlField(tag, tv.String()), nil
		case map[string]any:
			return decodeDataField(path+"/"+tag, tag, tv)
		default:
			return nil, singleIssue(CodeInvalidType, path+"/"+tag, fmt.Sprintf("expected string or object, got %s", jsonTypeName(fv)))
		}
	}
	// Unreachable: len(m) == 1 guarantees one iteration.
	return nil, singleIssue(CodeMultiKeyEntry, path, "empty field entry")
}

func decodeDataField(path, tag string, m map[string]any) (Field, Issues) {
	var iss Issues

	ind1 := requireString(m, "ind1", path, &iss)
	ind2 := requireString(m, "ind2", path, &iss)

	var subs SubFields
	if sv, ok := m["subfields"]; !ok {
		iss = AppendIssues(iss, Issue{Code: CodeRequired, Path: path + "/subfields", Message: "subfields is required", Offset: -1})
	} else if arr, ok := sv.([]any); ok {
		for i, entry := range arr {
			sf, siss := decodeSubFieldEntry(path+"/subfields/"+strconv.Itoa(i), entry)
			if len(siss) > 0 {
				iss = AppendIssues(iss, siss...)
				continue
			}
			subs = append(subs, sf)
		}
	} else {
		iss = AppendIssues(iss, Issue{Code: CodeInvalidType, Path: path + "/subfields", Message: fmt.Sprintf("expected array, got %s", jsonTypeName(sv)), Offset: -1})
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return NewDataField(tag, ind1, ind2, subs), nil
}

func decodeSubFieldEntry(path string, v any) (SubField, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return SubField{}, singleIssue(CodeInvalidType, path, fmt.Sprintf("expected object, got %s", jsonTypeName(v)))
	}
	if len(m) != 1 {
		return SubField{}, singleIssue(CodeMultiKeyEntry, path, fmt.Sprintf("subfield entry must have exactly one key, got %d", len(m)))
	}
	for code, cv := range m {
		s, ok := cv.(string)
		if !ok {
			return SubField{}, singleIssue(CodeInvalidType, path+"/"+code, fmt.Sprintf("expected string, got %s", jsonTypeName(cv)))
		}
		return NewSubField(code, s), nil
	}
	return SubField{}, singleIssue(CodeMultiKeyEntry, path, "empty subfield entry")
}

func requireString(m map[string]any, key, base string, iss *Issues) string {
	v, ok := m[key]
	if !ok {
		*iss = AppendIssues(*iss, Issue{Code: CodeRequired, Path: base + "/" + key, Message: key + " is required", Offset: -1})
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*iss = AppendIssues(*iss, Issue{Code: CodeInvalidType, Path: base + "/" + key, Message: fmt.Sprintf("expected string, got %s", jsonTypeName(v)), Offset: -1})
		return ""
	}
	return s
}

// sourceErrToIssues classifies a token-level failure: enforcement issues keep
// their code and path, everything else is a parse error on the line.
func sourceErrToIssues(err error, src Source) Issues {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: src.Location()})
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: "unexpected end of input", Offset: src.Location(), Cause: err})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Offset: src.Location(), Cause: err})
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
