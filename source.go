package marc

import (
	"io"
	"sync"

	eng "github.com/openbib/marc/internal/engine"
	gojsonsrc "github.com/openbib/marc/source/gojson"
	jsonsrc "github.com/openbib/marc/source/json"
)

// tokenKind enumerates JSON token kinds.
type tokenKind int

const (
	_tokenBeginObject tokenKind = iota
	_tokenEndObject
	_tokenBeginArray
	_tokenEndArray
	_tokenKey
	_tokenString
	_tokenNumber
	_tokenBool
	_tokenNull
)

// TokenKind is the exported alias of the token kind enum.
type TokenKind = tokenKind

const (
	TokenBeginObject TokenKind = _tokenBeginObject
	TokenEndObject   TokenKind = _tokenEndObject
	TokenBeginArray  TokenKind = _tokenBeginArray
	TokenEndArray    TokenKind = _tokenEndArray
	TokenKey         TokenKind = _tokenKey
	TokenString      TokenKind = _tokenString
	TokenNumber      TokenKind = _tokenNumber
	TokenBool        TokenKind = _tokenBool
	TokenNull        TokenKind = _tokenNull
)

// Token describes one token in the input. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   tokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; MIJ scalars keep their literal form.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic JSON inputs.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The
// default implementation is backed by goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json-backed driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = goJSONDriver{}
	jsonDriverMu.Unlock()
}

// StdlibJSONDriver returns an encoding/json-backed driver, useful when the
// go-json dependency must stay off the hot path or for differential testing.
func StdlibJSONDriver() JSONDriver { return stdJSONDriver{} }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// goJSONDriver wraps the goccy/go-json implementation.
type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewReader(r)}
}
func (goJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: gojsonsrc.NewBytes(b)}
}
func (goJSONDriver) Name() string { return "go-json" }

// stdJSONDriver wraps the encoding/json implementation.
type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewReader(r)}
}
func (stdJSONDriver) NewBytes(b []byte) Source {
	return &engineSourceAdapter{inner: jsonsrc.NewBytes(b)}
}
func (stdJSONDriver) Name() string { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return getJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return getJSONDriver().NewBytes(b) }

type engineSourceAdapter struct {
	inner eng.TokenSource
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: fromEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) Location() int64 { return s.inner.Location() }

// tokenSourceAdapter bridges a public Source back into the engine, for
// callers supplying their own Source implementation.
type tokenSourceAdapter struct {
	inner Source
}

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{Kind: toEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }

// engineTokenSource unwraps a Source into an engine.TokenSource, avoiding an
// adapter round-trip when the Source already wraps one.
func engineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}

func fromEngineKind(k eng.Kind) tokenKind {
	switch k {
	case eng.KindBeginObject:
		return _tokenBeginObject
	case eng.KindEndObject:
		return _tokenEndObject
	case eng.KindBeginArray:
		return _tokenBeginArray
	case eng.KindEndArray:
		return _tokenEndArray
	case eng.KindKey:
		return _tokenKey
	case eng.KindString:
		return _tokenString
	case eng.KindNumber:
		return _tokenNumber
	case eng.KindBool:
		return _tokenBool
	default:
		return _tokenNull
	}
}

func toEngineKind(k tokenKind) eng.Kind {
	switch k {
	case _tokenBeginObject:
		return eng.KindBeginObject
	case _tokenEndObject:
		return eng.KindEndObject
	case _tokenBeginArray:
		return eng.KindBeginArray
	case _tokenEndArray:
		return eng.KindEndArray
	case _tokenKey:
		return eng.KindKey
	case _tokenString:
		return eng.KindString
	case _tokenNumber:
		return eng.KindNumber
	case _tokenBool:
		return eng.KindBool
	default:
		return eng.KindNull
	}
}
