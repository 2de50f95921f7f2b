package marc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	marc "github.com/openbib/marc"
)

type goldenCase struct {
	Name   string            `yaml:"name"`
	Input  string            `yaml:"input"`
	Err    string            `yaml:"err"` // expected issue code; empty means success
	Leader string            `yaml:"leader"`
	Fields int               `yaml:"fields"`
	Values map[string]string `yaml:"values"` // tag -> FirstValue
}

type goldenFile struct {
	Cases []goldenCase `yaml:"cases"`
}

func TestDecode_GoldenCases(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "records.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var gf goldenFile
	if err := yaml.Unmarshal(raw, &gf); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if len(gf.Cases) == 0 {
		t.Fatalf("fixture holds no cases")
	}

	ctx := context.Background()
	for _, tc := range gf.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			rec, err := marc.DecodeString(ctx, tc.Input)
			if tc.Err != "" {
				iss, ok := marc.AsIssues(err)
				if !ok || !iss.HasCode(tc.Err) {
					t.Fatalf("want issue code %q, got %v", tc.Err, err)
				}
				if rec != nil {
					t.Fatalf("errored case still built a record")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Leader() != tc.Leader {
				t.Fatalf("leader = %q, want %q", rec.Leader(), tc.Leader)
			}
			if got := len(rec.Fields()); got != tc.Fields {
				t.Fatalf("got %d fields, want %d", got, tc.Fields)
			}
			for tag, want := range tc.Values {
				if got := rec.FirstValue(tag); got != want {
					t.Fatalf("FirstValue(%s) = %q, want %q", tag, got, want)
				}
			}
		})
	}
}
