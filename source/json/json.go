// Package json adapts encoding/json's token stream to the engine's
// TokenSource.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/openbib/marc/internal/engine"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type jsonSource struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return s.tok(eng.Token{Kind: eng.KindBeginObject}), nil
		case '}':
			s.pop()
			s.afterValue()
			return s.tok(eng.Token{Kind: eng.KindEndObject}), nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return s.tok(eng.Token{Kind: eng.KindBeginArray}), nil
		case ']':
			s.pop()
			s.afterValue()
			return s.tok(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if s.expectingKey() {
			s.top().expectingKey = false
			return s.tok(eng.Token{Kind: eng.KindKey, String: v}), nil
		}
		s.afterValue()
		return s.tok(eng.Token{Kind: eng.KindString, String: v}), nil
	case bool:
		s.afterValue()
		return s.tok(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	case json.Number:
		s.afterValue()
		return s.tok(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case float64:
		s.afterValue()
		return s.tok(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}), nil
	}
	// json.Token yields nil for JSON null.
	s.afterValue()
	return s.tok(eng.Token{Kind: eng.KindNull}), nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }

func (s *jsonSource) tok(t eng.Token) eng.Token {
	t.Offset = s.lastOffset
	return t
}

func (s *jsonSource) top() *frame {
	if n := len(s.stack); n > 0 {
		return &s.stack[n-1]
	}
	return nil
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

func (s *jsonSource) expectingKey() bool {
	t := s.top()
	return t != nil && t.kind == kindObject && t.expectingKey
}

// afterValue marks the enclosing object, if any, as expecting its next key.
func (s *jsonSource) afterValue() {
	if t := s.top(); t != nil && t.kind == kindObject && !t.expectingKey {
		t.expectingKey = true
	}
}
