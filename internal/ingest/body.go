package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Fields is a decoded request body: keys exactly as sent, values loosely typed.
type Fields map[string]any

const MIMEApplicationCBOR = "application/cbor"

var (
	ErrEmptyBody = errors.New("empty body")
	ErrNotObject = errors.New("top-level value is not an object")
)

// ParseError reports a body that could not be decoded. Raw holds the body
// verbatim so it can be echoed back and logged.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse body: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(raw []byte, err error) *ParseError {
	return &ParseError{Raw: raw, Err: err}
}

var cborDecMode = mustCBORDecMode()

func mustCBORDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor decode options: %v", err))
	}
	return dm
}

// ParseBody selects a decoder from the request content type. Anything that is
// not CBOR is treated as JSON, matching what devices historically sent.
func ParseBody(contentType string, body []byte) (Fields, error) {
	if mediaType(contentType) == MIMEApplicationCBOR {
		return ParseCBOR(body)
	}
	return ParseJSON(body)
}

// ParseJSON decodes body as a single JSON object. Numbers are kept as
// json.Number so integers survive without float rounding.
func ParseJSON(body []byte) (Fields, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newParseError(body, ErrEmptyBody)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, newParseError(body, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, newParseError(body, errors.New("unexpected data after top-level value"))
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, newParseError(body, ErrNotObject)
	}
	return Fields(obj), nil
}

// ParseCBOR decodes body as a single CBOR map with text keys.
func ParseCBOR(body []byte) (Fields, error) {
	if len(body) == 0 {
		return nil, newParseError(body, ErrEmptyBody)
	}

	var v any
	if err := cborDecMode.Unmarshal(body, &v); err != nil {
		return nil, newParseError(body, err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, newParseError(body, ErrNotObject)
	}
	return Fields(obj), nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
