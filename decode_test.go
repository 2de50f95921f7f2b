package marc_test

import (
	"context"
	"reflect"
	"testing"

	marc "github.com/openbib/marc"
)

const exampleLine = `{"leader":"L1","fields":[{"001":"ocm123"},{"245":{"ind1":"1","ind2":"0","subfields":[{"a":"Design"},{"b":"principles"}]}}]}`

func TestDecodeString_EndToEnd(t *testing.T) {
	ctx := context.Background()
	rec, err := marc.DecodeString(ctx, exampleLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Leader() != "L1" {
		t.Fatalf("leader = %q, want L1", rec.Leader())
	}
	if got := len(rec.Fields()); got != 2 {
		t.Fatalf("got %d fields, want 2", got)
	}
	if got := rec.FirstValue("245"); got != "Design principles" {
		t.Fatalf("FirstValue(245) = %q, want %q", got, "Design principles")
	}
	f, ok := rec.Find("245")
	if !ok {
		t.Fatalf("Find(245) found nothing")
	}
	df, ok := f.(*marc.DataField)
	if !ok {
		t.Fatalf("245 decoded as %T, want *marc.DataField", f)
	}
	if df.Ind1() != "1" || df.Ind2() != "0" {
		t.Fatalf("indicators = %q %q", df.Ind1(), df.Ind2())
	}
	cf, ok := rec.Find("001")
	if !ok || cf.Type() != marc.ControlFieldType {
		t.Fatalf("001 not decoded as a control field")
	}
}

func TestDecodeString_FieldOrderPreserved(t *testing.T) {
	line := `{"leader":"L","fields":[{"650":{"ind1":" ","ind2":"0","subfields":[{"a":"First"}]}},{"001":"x"},{"650":{"ind1":" ","ind2":"0","subfields":[{"a":"Second"}]}}]}`
	rec, err := marc.DecodeString(context.Background(), line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags := []string{}
	for _, f := range rec.Fields() {
		tags = append(tags, f.Tag())
	}
	if !reflect.DeepEqual(tags, []string{"650", "001", "650"}) {
		t.Fatalf("field order = %v", tags)
	}
	if got := rec.Values("650"); !reflect.DeepEqual(got, []string{"First", "Second"}) {
		t.Fatalf("Values(650) = %v", got)
	}
}

func TestDecodeString_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := marc.DecodeString(ctx, exampleLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := marc.DecodeString(ctx, exampleLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("decoding the same line twice produced different records")
	}
}

func TestDecodeString_InvalidJSONIsParseError(t *testing.T) {
	_, err := marc.DecodeString(context.Background(), `{"leader": "L1", `)
	iss, ok := marc.AsIssues(err)
	if !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	if !iss.HasCode(marc.CodeParseError) {
		t.Fatalf("want parse_error, got %v", iss)
	}
}

func TestDecodeString_MultiKeyFieldEntry(t *testing.T) {
	line := `{"leader":"L","fields":[{"001":"a","002":"b"}]}`
	_, err := marc.DecodeString(context.Background(), line)
	iss, ok := marc.AsIssues(err)
	if !ok || !iss.HasCode(marc.CodeMultiKeyEntry) {
		t.Fatalf("want multi_key_entry, got %v", err)
	}
	if iss[0].Path != "/fields/0" {
		t.Fatalf("issue path = %q, want /fields/0", iss[0].Path)
	}
}

func TestDecodeString_DuplicateTagKeyInOneEntry(t *testing.T) {
	// A Go map would silently collapse this; it must surface as an issue.
	line := `{"leader":"L","fields":[{"650":"a","650":"b"}]}`
	_, err := marc.DecodeString(context.Background(), line)
	iss, ok := marc.AsIssues(err)
	if !ok || !iss.HasCode(marc.CodeDuplicateKey) {
		t.Fatalf("want duplicate_key, got %v", err)
	}
}

func TestDecodeString_MissingIndicatorOrSubfields(t *testing.T) {
	tests := []struct {
		name string
		line string
		path string
	}{
		{"missing ind1", `{"leader":"L","fields":[{"245":{"ind2":"0","subfields":[{"a":"x"}]}}]}`, "/fields/0/245/ind1"},
		{"missing ind2", `{"leader":"L","fields":[{"245":{"ind1":"1","subfields":[{"a":"x"}]}}]}`, "/fields/0/245/ind2"},
		{"missing subfields", `{"leader":"L","fields":[{"245":{"ind1":"1","ind2":"0"}}]}`, "/fields/0/245/subfields"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := marc.DecodeString(context.Background(), tc.line)
			iss, ok := marc.AsIssues(err)
			if !ok || !iss.HasCode(marc.CodeRequired) {
				t.Fatalf("want required, got %v", err)
			}
			found := false
			for _, it := range iss {
				if it.Path == tc.path {
					found = true
				}
			}
			if !found {
				t.Fatalf("no issue at %q, got %v", tc.path, iss)
			}
		})
	}
}

func TestDecodeString_MissingLeaderAndFields(t *testing.T) {
	_, err := marc.DecodeString(context.Background(), `{}`)
	iss, ok := marc.AsIssues(err)
	if !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	if !iss.HasCode(marc.CodeRequired) || len(iss) != 2 {
		t.Fatalf("want two required issues, got %v", iss)
	}
}

func TestDecodeString_BadScalarTypes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bool control value", `{"leader":"L","fields":[{"001":true}]}`},
		{"null control value", `{"leader":"L","fields":[{"001":null}]}`},
		{"array field value", `{"leader":"L","fields":[{"001":["x"]}]}`},
		{"numeric subfield value", `{"leader":"L","fields":[{"245":{"ind1":" ","ind2":" ","subfields":[{"a":7}]}}]}`},
		{"non-object line", `["leader"]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := marc.DecodeString(context.Background(), tc.line)
			iss, ok := marc.AsIssues(err)
			if !ok || !iss.HasCode(marc.CodeInvalidType) {
				t.Fatalf("want invalid_type, got %v", err)
			}
		})
	}
}

func TestDecodeString_NumericControlValueKeptAsText(t *testing.T) {
	rec, err := marc.DecodeString(context.Background(), `{"leader":"L","fields":[{"003":42}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.FirstValue("003"); got != "42" {
		t.Fatalf("FirstValue(003) = %q, want literal text 42", got)
	}
}

func TestDecodeString_MultiKeySubFieldEntry(t *testing.T) {
	line := `{"leader":"L","fields":[{"245":{"ind1":" ","ind2":" ","subfields":[{"a":"x","b":"y"}]}}]}`
	_, err := marc.DecodeString(context.Background(), line)
	iss, ok := marc.AsIssues(err)
	if !ok || !iss.HasCode(marc.CodeMultiKeyEntry) {
		t.Fatalf("want multi_key_entry, got %v", err)
	}
	if iss[0].Path != "/fields/0/245/subfields/0" {
		t.Fatalf("issue path = %q", iss[0].Path)
	}
}

func TestDecodeString_TrailingData(t *testing.T) {
	_, err := marc.DecodeString(context.Background(), exampleLine+`{"leader":"L2"}`)
	iss, ok := marc.AsIssues(err)
	if !ok || !iss.HasCode(marc.CodeParseError) {
		t.Fatalf("want parse_error on trailing data, got %v", err)
	}
}

func TestDecodeString_CollectsAllIssues(t *testing.T) {
	line := `{"leader":"L","fields":[{"001":"a","002":"b"},{"245":{"ind1":"1","ind2":"0"}}]}`
	_, err := marc.DecodeString(context.Background(), line)
	iss, ok := marc.AsIssues(err)
	if !ok {
		t.Fatalf("want Issues, got %v", err)
	}
	if !iss.HasCode(marc.CodeMultiKeyEntry) || !iss.HasCode(marc.CodeRequired) {
		t.Fatalf("want both entry and required issues, got %v", iss)
	}
}

func TestDecodeRecord_FromGenericTree(t *testing.T) {
	tree := map[string]any{
		"leader": "L9",
		"fields": []any{
			map[string]any{"001": "id1"},
			map[string]any{"700": map[string]any{
				"ind1": "1", "ind2": " ",
				"subfields": []any{map[string]any{"a": "Editor, E."}},
			}},
		},
	}
	rec, err := marc.DecodeRecord(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Leader() != "L9" || len(rec.Fields()) != 2 {
		t.Fatalf("unexpected record: leader=%q fields=%d", rec.Leader(), len(rec.Fields()))
	}
}

func TestDecode_NilSourceIsUsageError(t *testing.T) {
	_, err := marc.Decode(context.Background(), nil)
	iss, ok := marc.AsIssues(err)
	if !ok || !iss.HasCode(marc.CodeUsage) {
		t.Fatalf("want usage_error, got %v", err)
	}
}

func TestDecode_StdlibDriver(t *testing.T) {
	marc.SetJSONDriver(marc.StdlibJSONDriver())
	defer marc.UseDefaultJSONDriver()

	rec, err := marc.DecodeString(context.Background(), exampleLine)
	if err != nil {
		t.Fatalf("unexpected error with %s driver: %v", marc.StdlibJSONDriver().Name(), err)
	}
	if got := rec.FirstValue("245"); got != "Design principles" {
		t.Fatalf("FirstValue(245) = %q", got)
	}
}
