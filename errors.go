package marc

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// CodeParseError: the input text is not valid JSON.
	CodeParseError = "parse_error"
	// Schema errors: valid JSON that violates the MIJ shape contract.
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeMultiKeyEntry = "multi_key_entry"
	CodeDuplicateKey  = "duplicate_key"
	// CodeUsage: the caller invoked an API with a malformed argument. Never
	// downgraded to a silent no-match result.
	CodeUsage = "usage_error"
	// CodeIO: the underlying line source failed. Terminal for a stream.
	CodeIO = "io_error"
)

// Issue represents a single decode or usage problem.
type Issue struct {
	Path    string // JSON Pointer within the offending line (for example: /fields/2/245).
	Code    string // One of the codes listed above.
	Message string
	Offset  int64 // Byte offset in the input line (-1 when unknown).
	Cause   error // Optional: underlying error.
}

// Issues is a collection of decode problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. multi_key_entry at /fields/2
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the first underlying cause, if any, to errors.Is/As chains.
func (iss Issues) Unwrap() error {
	for _, it := range iss {
		if it.Cause != nil {
			return it.Cause
		}
	}
	return nil
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func singleIssue(code, path, msg string) Issues {
	return AppendIssues(nil, Issue{Code: code, Path: path, Message: msg, Offset: -1})
}
