package engine

import (
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource. A Go map collapses repeated object
// keys, so a duplicated tag or subfield code inside one MIJ entry object is
// only observable at the token level; this wrapper catches it while the
// tree is being built and attributes it with a JSON Pointer path. It also
// guards against pathological nesting depth.

// SimpleIssue is a minimal issue representation handed back to the caller.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	// RejectDuplicateKeys makes a repeated key within one object an error.
	RejectDuplicateKeys bool
	// MaxDepth bounds container nesting; 0 disables the check.
	MaxDepth int
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource applying the given options on top
// of inner.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
	depth int
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.currentPathForToken(tok)

	switch tok.Kind {
	case KindBeginObject:
		e.stack = append(e.stack, frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: path})
		if err := e.push(path); err != nil {
			return Token{}, err
		}
	case KindBeginArray:
		e.stack = append(e.stack, frame{kind: kindArray, path: path})
		if err := e.push(path); err != nil {
			return Token{}, err
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		if e.depth > 0 {
			e.depth--
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if e.opt.RejectDuplicateKeys {
					if _, ok := top.keys[tok.String]; ok {
						si := SimpleIssue{
							Code:    "duplicate_key",
							Path:    normalizeIssuePath(path),
							Message: "key '" + tok.String + "' duplicated",
						}
						return Token{}, IssueError{si}
					}
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	return tok, nil
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func (e *enforcingTokenSource) push(path string) error {
	e.depth++
	if e.opt.MaxDepth > 0 && e.depth > e.opt.MaxDepth {
		si := SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: "max depth exceeded"}
		return IssueError{si}
	}
	return nil
}

// valueDone marks the enclosing object, if any, as expecting its next key.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) currentPathForToken(tok Token) string {
	if len(e.stack) == 0 {
		if tok.Kind == KindKey {
			return joinJSONPointer("", tok.String)
		}
		return ""
	}

	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		return joinJSONPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
			return p
		}
		if top.kind == kindObject && !top.expectingKey {
			return joinJSONPointer(top.path, top.pendingKey)
		}
		return top.path
	default:
		return top.path
	}
}

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}
