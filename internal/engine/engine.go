// Package engine turns JSON text into the generic value tree consumed by the
// DTO parser. It streams tokens from goccy/go-json, enforces duplicate-key and
// nesting-depth policies while reading, and keeps numbers as json.Number so
// that integer and float fields can decide how to read them.
package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	j "github.com/goccy/go-json"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
}

// TokenSource is a minimal interface required by the decoder.
type TokenSource interface {
	NextToken() (Token, error)
}

// Options controls decoding.
type Options struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits container nesting. 0 means unlimited.
	MaxDepth int
	// IssueSink receives non-fatal issues such as duplicate keys under DupWarn.
	IssueSink func(SimpleIssue)
}

var errTrailingData = errors.New("unexpected data after top-level value")

// Decode reads exactly one JSON value from r. Objects become map[string]any,
// arrays []any and numbers json.Number. The text is checked for syntax before
// it is tokenized. Under DupWarn and DupIgnore the last occurrence of a
// duplicated key wins.
func Decode(r io.Reader, opt Options) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, IssueError{SimpleIssue{Code: "parse_error", Path: "/", Message: "empty input"}}
	}
	if !j.Valid(data) {
		return nil, IssueError{SimpleIssue{Code: "parse_error", Path: "/", Message: "invalid JSON"}}
	}
	src := WrapWithEnforcement(NewGoJSON(bytes.NewReader(data)), opt)
	v, err := DecodeAnyFromSource(src)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return nil, IssueError{SimpleIssue{Code: "parse_error", Path: "/", Message: err.Error()}}
	}
	return v, nil
}

// DecodeAnyFromSource builds an "any" value from the streaming token source.
func DecodeAnyFromSource(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

func decodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

// next reads a token inside a container, where EOF is always premature.
func next(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if err == io.EOF {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}

func decodeObject(src TokenSource) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := next(src)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource) (any, error) {
	arr := []any{}
	for {
		tok, err := next(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
