package api

import (
	"strconv"
	"strings"
)

// RawRequest is one framed inbound request, owned by the dispatcher until
// its handler returns.
type RawRequest struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Header looks a header up case-insensitively.
func (r RawRequest) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// DeclaredBody returns the body as framed by Content-Length. A missing,
// malformed or negative length, or one the received bytes cannot satisfy,
// yields an empty body.
func (r RawRequest) DeclaredBody() []byte {
	v, ok := r.Header("Content-Length")
	if !ok {
		return []byte{}
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > len(r.Body) {
		return []byte{}
	}

	return r.Body[:n]
}

// Response fully describes what the transport writes back.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

const (
	MIMETextHTML  = "text/html; charset=utf-8"
	MIMETextPlain = "text/plain; charset=utf-8"
)

func textResponse(status int, body string) Response {
	return Response{Status: status, ContentType: MIMETextPlain, Body: []byte(body)}
}

func notFound() Response {
	return Response{Status: 404, Body: []byte{}}
}
